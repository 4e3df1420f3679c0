package wrapper_test

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/catalog/cqrs/command"
	"github.com/rise-and-shine/catalog/cqrs/command/wrapper"
	"github.com/rise-and-shine/catalog/val"
)

type createTag struct {
	Name string `json:"name" validate:"required,max=8"`
}

type tagCommand struct {
	calls int
}

func (c *tagCommand) Execute(_ context.Context, in createTag) (string, error) {
	c.calls++
	return in.Name, nil
}

func (c *tagCommand) OperationID() string { return "create-tag" }

func TestValidateCommandWrapper(t *testing.T) {
	inner := &tagCommand{}
	cmd := wrapper.NewValidateCommandWrapper[createTag, string]()(inner)

	_, err := cmd.Execute(context.Background(), createTag{Name: ""})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, val.CodeValidationFailed))
	assert.Contains(t, errx.AsErrorX(err).Fields(), "name")
	assert.Equal(t, 0, inner.calls)

	out, err := cmd.Execute(context.Background(), createTag{Name: "cozy"})
	require.NoError(t, err)
	assert.Equal(t, "cozy", out)
	assert.Equal(t, 1, inner.calls)
}

func TestValidateCommandWrapper_KeepsOperationID(t *testing.T) {
	cmd := wrapper.NewValidateCommandWrapper[createTag, string]()(&tagCommand{})

	op, ok := cmd.(interface{ OperationID() string })
	require.True(t, ok)
	assert.Equal(t, "create-tag", op.OperationID())

	plain := wrapper.NewValidateCommandWrapper[createTag, string]()(
		command.Func[createTag, string](func(context.Context, createTag) (string, error) { return "", nil }),
	)
	assert.Empty(t, plain.(interface{ OperationID() string }).OperationID()) //nolint:forcetypeassert // wrapper type
}
