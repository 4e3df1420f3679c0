package logger

import (
	"encoding/json"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// devEncoder prints the console prefix with a colored level and the
// structured fields as indented JSON below it.
type devEncoder struct {
	zapcore.Encoder
	jsonEncoder zapcore.Encoder
	pool        buffer.Pool
}

func newDevEncoder(encoderConfig zapcore.EncoderConfig) zapcore.Encoder {
	return &devEncoder{
		Encoder:     zapcore.NewConsoleEncoder(encoderConfig),
		jsonEncoder: zapcore.NewJSONEncoder(encoderConfig),
		pool:        buffer.NewPool(),
	}
}

func (e *devEncoder) Clone() zapcore.Encoder {
	return &devEncoder{
		Encoder:     e.Encoder.Clone(),
		jsonEncoder: e.jsonEncoder.Clone(),
		pool:        e.pool,
	}
}

func (e *devEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	prefix, err := e.Encoder.EncodeEntry(entry, nil)
	if err != nil {
		return nil, err
	}
	line := colorizeLevel(strings.TrimRight(prefix.String(), "\n"), entry.Level)
	prefix.Free()

	fieldBuf, err := e.jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return nil, err
	}
	defer fieldBuf.Free()

	var fieldsMap map[string]any
	if jsonErr := json.Unmarshal(fieldBuf.Bytes(), &fieldsMap); jsonErr != nil {
		line += " " + strings.TrimSpace(fieldBuf.String())
	} else {
		// already printed in the console prefix
		delete(fieldsMap, messageKey)
		delete(fieldsMap, levelKey)
		delete(fieldsMap, timeKey)
		delete(fieldsMap, nameKey)
	}

	if len(fieldsMap) > 0 {
		pretty, marshalErr := json.MarshalIndent(fieldsMap, "", "  ")
		if marshalErr == nil {
			line += "\n" + string(pretty)
		}
	}

	buf := e.pool.Get()
	buf.AppendString(line)
	buf.AppendString("\n")
	return buf, nil
}

func colorizeLevel(line string, level zapcore.Level) string {
	var c *color.Color
	switch level {
	case zapcore.DebugLevel:
		c = color.New(color.FgCyan)
	case zapcore.InfoLevel:
		c = color.New(color.FgGreen)
	case zapcore.WarnLevel:
		c = color.New(color.FgYellow)
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		c = color.New(color.FgRed, color.Bold)
	default:
		return line
	}

	lvl := level.CapitalString()
	return strings.Replace(line, lvl, c.Sprint(lvl), 1)
}
