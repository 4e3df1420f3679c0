package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/code19m/errx"
	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/catalog/catalog"
	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/pagination"
	"github.com/rise-and-shine/catalog/sorter"
)

type listFlags struct {
	search   string
	searchBy string
	sort     string
	page     int
	perPage  int
	all      bool
	direct   bool
}

func (f *listFlags) register(cmd *cobra.Command, defaultSearchBy string) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive substring to look for")
	cmd.Flags().StringVar(&f.searchBy, "search-by", defaultSearchBy, "field the search applies to")
	cmd.Flags().StringVar(&f.sort, "sort", "", `sort order as "field" or "field:asc|desc"`)
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&f.perPage, "per-page", pagination.DefaultItemsOnPage, "items on one page")
	cmd.Flags().BoolVar(&f.all, "all", false, "list every match on one page")
}

// params translates the flags against the fields of schema. Unknown sort
// fields are passed through so that the engine reports them.
func (f *listFlags) params(fields []string) dynquery.Params {
	p := dynquery.NewParams()
	p.SearchString = f.search
	p.SearchBy = dynquery.Selector(f.searchBy)
	p.PageNumber = f.page
	p.ItemsOnPage = f.perPage
	if f.all {
		p.ItemsOnPage = pagination.AllItems
	}

	if opt, ok := sorter.MakeFromStr(f.sort, fields...).First(); ok {
		p.SortBy = dynquery.Selector(opt.F)
		p.SortDescending = opt.Descending()
	} else if f.sort != "" {
		p.SortBy = dynquery.Selector(strings.SplitN(f.sort, ":", 2)[0]) //nolint:mnd // field and direction
	}
	return p
}

func newHousingsCmd(current func() *app) *cobra.Command {
	cmd := &cobra.Command{Use: "housings", Short: "Housing use cases"}

	flags := &listFlags{}
	list := &cobra.Command{
		Use:   "list",
		Short: "List housings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := flags.params(catalog.HousingSchema.Names())
			var (
				page pagination.Response[*catalog.Housing]
				err  error
			)
			if flags.direct {
				page, err = send[catalog.SearchHousings, pagination.Response[*catalog.Housing]](
					cmd.Context(), current(), catalog.SearchHousings{Params: p})
			} else {
				page, err = send[catalog.ListHousings, pagination.Response[*catalog.Housing]](
					cmd.Context(), current(), catalog.ListHousings{Params: p})
			}
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}

			printPage(cmd.OutOrStdout(), page, []string{"ID", "NAME", "REGION", "PRICE", "ROOMS", "AVAILABLE"},
				func(h *catalog.Housing) []string {
					region := h.RegionID
					if h.Region != nil {
						region = h.Region.Name
					}
					return []string{
						h.ID, h.Name, region,
						cast.ToString(h.PricePerNight) + " " + h.Currency,
						cast.ToString(h.Rooms),
						cast.ToString(h.Available),
					}
				})
			return nil
		},
	}
	flags.register(list, "name")
	list.Flags().BoolVar(&flags.direct, "direct", false, "query the storage instead of the cache")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one housing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := send[catalog.GetHousing, *catalog.Housing](cmd.Context(), current(), catalog.GetHousing{ID: args[0]})
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}
			printPage(cmd.OutOrStdout(), pagination.NewResponse([]*catalog.Housing{h}, 1, pagination.Request{}),
				[]string{"ID", "NAME", "DESCRIPTION", "PRICE"},
				func(h *catalog.Housing) []string {
					return []string{h.ID, h.Name, h.Description, cast.ToString(h.PricePerNight) + " " + h.Currency}
				})
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newRegionsCmd(current func() *app) *cobra.Command {
	cmd := &cobra.Command{Use: "regions", Short: "Region use cases"}

	flags := &listFlags{}
	list := &cobra.Command{
		Use:   "list",
		Short: "List regions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := send[catalog.ListRegions, pagination.Response[*catalog.Region]](
				cmd.Context(), current(), catalog.ListRegions{Params: flags.params(catalog.RegionSchema.Names())})
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}
			printPage(cmd.OutOrStdout(), page, []string{"ID", "CODE", "NAME"}, func(r *catalog.Region) []string {
				return []string{r.ID, r.Code, r.Name}
			})
			return nil
		},
	}
	flags.register(list, "name")

	cmd.AddCommand(list)
	return cmd
}

func newAmenitiesCmd(current func() *app) *cobra.Command {
	cmd := &cobra.Command{Use: "amenities", Short: "Amenity use cases"}

	flags := &listFlags{}
	list := &cobra.Command{
		Use:   "list",
		Short: "List amenities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := send[catalog.ListAmenities, pagination.Response[*catalog.Amenity]](
				cmd.Context(), current(), catalog.ListAmenities{Params: flags.params(catalog.AmenitySchema.Names())})
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
				return err
			}
			printPage(cmd.OutOrStdout(), page, []string{"ID", "CODE", "NAME"}, func(a *catalog.Amenity) []string {
				return []string{a.ID, a.Code, a.Name}
			})
			return nil
		},
	}
	flags.register(list, "name")

	cmd.AddCommand(list)
	return cmd
}

func send[I, R any](ctx context.Context, a *app, in I) (R, error) {
	return cqrs.Send[I, R](ctx, a.dispatcher, in)
}

func printPage[E any](w io.Writer, page pagination.Response[E], header []string, row func(E) []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, item := range page.PageContent {
		fmt.Fprintln(tw, strings.Join(row(item), "\t"))
	}
	_ = tw.Flush()

	faint := color.New(color.Faint)
	faint.Fprintf(w, "\npage %d of %d, %d total\n", page.PageNumber, page.PageCount, page.TotalCount)
}

func printError(w io.Writer, err error) {
	e := errx.AsErrorX(err)
	red := color.New(color.FgRed, color.Bold)
	fmt.Fprintf(w, "%s %s (%s)\n", red.Sprint("error:"), e.Error(), e.Code())
	for field, desc := range e.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", field, desc)
	}
}
