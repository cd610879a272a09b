package kensaku_test

import (
	"testing"

	"github.com/goccy/go-json"
	"gotest.tools/v3/assert"

	"github.com/edwinsyarief/kensaku"
)

type jsonField struct {
	Term   string            `json:"term"`
	Source string            `json:"source"`
	IsSet  bool              `json:"is_set"`
	Values []json.RawMessage `json:"values"`
}

type jsonResult struct {
	Entities []string    `json:"entities"`
	Fields   []jsonField `json:"fields"`
}

type jsonFilter struct {
	Filter  string       `json:"filter"`
	Results []jsonResult `json:"results"`
}

// go test -run ^TestSerializeFilter$ . -count 1
func TestSerializeFilter(t *testing.T) {
	w := newTestWorld(t)
	sun := w.CreateEntity()
	kensaku.SetComponent(w, sun, Mass{Value: 3})
	movers := spawnMovers(w, 5)
	spawnStatics(w, 2)

	f, err := kensaku.NewFilter(w, kensaku.WithExpr("Position, ?Velocity, Mass(#0)"))
	assert.NilError(t, err)
	defer f.Release()

	buf, err := kensaku.SerializeFilter(f)
	assert.NilError(t, err)

	var out jsonFilter
	assert.NilError(t, json.Unmarshal(buf, &out))
	assert.Equal(t, out.Filter, "Position, ?Velocity, Mass(#0)")

	entities, withVel := 0, 0
	for _, r := range out.Results {
		entities += len(r.Entities)
		assert.Equal(t, len(r.Fields), 3)
		assert.Equal(t, len(r.Fields[0].Values), len(r.Entities))

		mass := r.Fields[2]
		assert.Equal(t, mass.Term, "Mass(#0)")
		assert.Equal(t, mass.Source, sun.String())
		assert.Equal(t, len(mass.Values), 1)
		assert.Equal(t, string(mass.Values[0]), `{"Value":3}`)

		if r.Fields[1].IsSet {
			withVel += len(r.Entities)
			assert.Equal(t, string(r.Fields[1].Values[0]), `{"VX":1,"VY":2}`)
		} else {
			assert.Equal(t, len(r.Fields[1].Values), 0)
		}
	}
	assert.Equal(t, entities, 7)
	assert.Equal(t, withVel, len(movers))
}

// go test -run ^TestSerializeEmptyFilter$ . -count 1
func TestSerializeEmptyFilter(t *testing.T) {
	w := newTestWorld(t)
	kensaku.RegisterComponent[Health](w)
	f, err := kensaku.NewFilter(w, kensaku.WithExpr("Health"))
	assert.NilError(t, err)

	buf, err := kensaku.SerializeFilter(f)
	assert.NilError(t, err)
	assert.Equal(t, string(buf), `{"filter":"Health","results":[]}`)

	f.Release()
	_, err = kensaku.SerializeFilter(f)
	assert.ErrorIs(t, err, kensaku.ErrUseOfEmptyHandle)
}
