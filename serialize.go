package kensaku

import (
	"reflect"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

type serializedField struct {
	Term   string `json:"term"`
	Source string `json:"source,omitempty"`
	IsSet  bool   `json:"is_set"`
	Values []any  `json:"values,omitempty"`
}

type serializedResult struct {
	Entities []string          `json:"entities"`
	Fields   []serializedField `json:"fields"`
}

type serializedFilter struct {
	Filter  string             `json:"filter"`
	Results []serializedResult `json:"results"`
}

// SerializeFilter runs one pass of f and renders every matched chunk as JSON:
//
//	{"filter":"Position, ?Velocity","results":[
//	  {"entities":["1v1","2v2"],"fields":[
//	    {"term":"Position","is_set":true,"values":[{"X":1,"Y":2},{"X":3,"Y":4}]},
//	    {"term":"?Velocity","is_set":false}]}]}
//
// A field read from a fixed source carries the source entity and a single
// value. Terms without data are left out of fields.
func SerializeFilter(f *Filter) ([]byte, error) {
	out := serializedFilter{Filter: f.String(), Results: []serializedResult{}}
	err := f.run(invokeEach, func(it *Iter) {
		out.Results = append(out.Results, serializeChunk(it))
	})
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(out)
	if err != nil {
		return nil, eris.Wrap(err, "marshal filter results")
	}
	return buf, nil
}

func serializeChunk(it *Iter) serializedResult {
	s := it.state
	res := serializedResult{
		Entities: make([]string, len(it.entities)),
		Fields:   make([]serializedField, 0, len(s.fields)),
	}
	for i, e := range it.entities {
		res.Entities[i] = e.String()
	}
	for _, ti := range s.fields {
		t := s.terms[ti]
		sf := serializedField{Term: formatTerm(t, s.names[ti]), IsSet: it.fields[ti].set}
		if !t.IsSelf() {
			sf.Source = t.Src.String()
		}
		if sf.IsSet {
			n := it.count
			if !it.fields[ti].self {
				n = 1
			}
			typ := it.world.components.types[t.ID]
			sf.Values = make([]any, n)
			for row := range sf.Values {
				sf.Values[row] = reflect.NewAt(typ, it.cellAt(ti, row)).Elem().Interface()
			}
		}
		res.Fields = append(res.Fields, sf)
	}
	return res
}
