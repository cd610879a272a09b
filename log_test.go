package kensaku

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type logPosition struct{ X, Y float32 }
type logFrozen struct{}

func TestLogFilter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWorld(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	pos := RegisterComponent[logPosition](w)
	frozen := RegisterComponent[logFrozen](w)

	f, err := NewFilter(w, WithTerms(Term{ID: pos, Access: AccessIn}), Without(frozen), WithName("movers"))
	assert.NilError(t, err)
	defer f.Release()

	buf.Reset()
	logFilter(&w.logger, zerolog.InfoLevel, f, "inspect")

	var line struct {
		FilterID  string `json:"filter_id"`
		Ownership string `json:"ownership"`
		Name      string `json:"filter_name"`
		TermCount int    `json:"term_count"`
		Terms     []struct {
			ComponentID   int    `json:"component_id"`
			ComponentName string `json:"component_name"`
			Oper          string `json:"oper"`
			Access        string `json:"access"`
		} `json:"terms"`
		Message string `json:"message"`
	}
	assert.NilError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, line.FilterID, f.ID().String())
	assert.Equal(t, line.Ownership, "owned")
	assert.Equal(t, line.Name, "movers")
	assert.Equal(t, line.TermCount, 2)
	assert.Equal(t, len(line.Terms), 2)
	assert.Equal(t, line.Terms[0].ComponentName, "logPosition")
	assert.Equal(t, line.Terms[0].Access, "in")
	assert.Equal(t, line.Terms[1].Oper, "not")
	assert.Equal(t, line.Message, "inspect")
}

func TestLogFilterDisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	w := NewWorld(WithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel)))
	RegisterComponent[logPosition](w)

	f, err := NewFilter(w, WithExpr("logPosition"))
	assert.NilError(t, err)
	f.Release()
	assert.Equal(t, buf.Len(), 0)
}
