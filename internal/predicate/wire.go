package predicate

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// TimeLayout - формат времени в запросах (ISO 8601 с миллисекундами и смещением)
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Wire переводит дерево в нетипизированную форму языка запросов:
//
//	And  -> {"AND": [...]}
//	Or   -> {"OR": [...]}
//	Not  -> {"NOT": {...}}
//	Leaf -> {"<field><op>": value}
//
// Это единственное место, где типизированное дерево превращается в map[string]any.
func Wire(n Node) map[string]any {
	switch v := n.(type) {
	case And:
		return map[string]any{"AND": wireAll(v.Children)}
	case Or:
		return map[string]any{"OR": wireAll(v.Children)}
	case Not:
		return map[string]any{"NOT": Wire(v.Child)}
	case Leaf:
		return map[string]any{v.Key(): wireValue(v.Value)}
	default:
		return map[string]any{}
	}
}

// Marshal сериализует дерево в JSON
func Marshal(n Node) ([]byte, error) {
	return json.Marshal(Wire(n))
}

func wireAll(children []Node) []any {
	out := make([]any, 0, len(children))
	for _, c := range children {
		out = append(out, Wire(c))
	}
	return out
}

func wireValue(v any) any {
	switch val := v.(type) {
	case Node:
		return Wire(val)
	case time.Time:
		return val.Format(TimeLayout)
	case Distance:
		return map[string]any{
			"point": map[string]any{
				"latitude":  val.Point.Latitude,
				"longitude": val.Point.Longitude,
			},
			"distance": val.Meters,
		}
	default:
		return val
	}
}
