// Package predicate - типизированное булево дерево условий для исполнителя запросов.
//
// Дерево состоит из четырех видов узлов: And, Or, Not и Leaf. Перевод в нетипизированный
// формат нижележащего языка запросов выполняется только в Wire/Marshal.
package predicate

import (
	"errors"
	"time"
)

// ErrUnsupportedPredicate - исполнитель не умеет переводить поле или оператор
var ErrUnsupportedPredicate = errors.New("unsupported predicate")

// Operator - суффикс поля в языке запросов. Пустой оператор означает равенство.
type Operator string

const (
	OpEquals   Operator = ""
	OpContains Operator = "_CONTAINS"
	OpMatches  Operator = "_MATCHES"
	OpGT       Operator = "_GT"
	OpLT       Operator = "_LT"
	OpLTE      Operator = "_LTE"
	OpSome     Operator = "_SOME"
)

// Node - любой узел дерева
type Node interface {
	node()
}

// And - все дочерние условия должны выполняться
type And struct {
	Children []Node
}

// Or - хотя бы одно дочернее условие должно выполняться
type Or struct {
	Children []Node
}

// Not - отрицание условия
type Not struct {
	Child Node
}

// Leaf - условие (поле, оператор, значение).
// Value: скаляр, nil (null), time.Time, Distance или вложенный Node для связей и объектов.
type Leaf struct {
	Field string
	Op    Operator
	Value any
}

func (And) node()  {}
func (Or) node()   {}
func (Not) node()  {}
func (Leaf) node() {}

// Key - ключ поля в формате запроса, например "startTime_GT"
func (l Leaf) Key() string {
	return l.Field + string(l.Op)
}

// Point - географическая точка
type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance - значение для условий "в пределах расстояния"
type Distance struct {
	Point  Point
	Meters float64
}

// == Конструкторы == \\

func AllOf(children ...Node) And {
	return And{Children: children}
}

func AnyOf(children ...Node) Or {
	return Or{Children: children}
}

func Negate(child Node) Not {
	return Not{Child: child}
}

func Eq(field string, value any) Leaf {
	return Leaf{Field: field, Op: OpEquals, Value: value}
}

// IsNull - поле равно null
func IsNull(field string) Leaf {
	return Eq(field, nil)
}

// NotNull - NOT { field: null }
func NotNull(field string) Not {
	return Negate(IsNull(field))
}

func Contains(field, substring string) Leaf {
	return Leaf{Field: field, Op: OpContains, Value: substring}
}

func Matches(field, pattern string) Leaf {
	return Leaf{Field: field, Op: OpMatches, Value: pattern}
}

func GreaterThan(field string, value any) Leaf {
	return Leaf{Field: field, Op: OpGT, Value: value}
}

func LessThan(field string, value any) Leaf {
	return Leaf{Field: field, Op: OpLT, Value: value}
}

// After/Before - сравнения по времени
func After(field string, t time.Time) Leaf {
	return GreaterThan(field, t)
}

func Before(field string, t time.Time) Leaf {
	return LessThan(field, t)
}

// Within - поле-точка находится не дальше заданного расстояния
func Within(field string, point Point, meters float64) Leaf {
	return Leaf{Field: field, Op: OpLTE, Value: Distance{Point: point, Meters: meters}}
}

// Some - хотя бы один связанный объект удовлетворяет условию
func Some(relation string, where Node) Leaf {
	return Leaf{Field: relation, Op: OpSome, Value: where}
}

// Object - условие на вложенный объект без квантора, например агрегат
func Object(field string, where Node) Leaf {
	return Leaf{Field: field, Op: OpEquals, Value: where}
}

// CountLeaves возвращает число листовых условий в дереве, включая вложенные
func CountLeaves(n Node) int {
	switch v := n.(type) {
	case And:
		return countAll(v.Children)
	case Or:
		return countAll(v.Children)
	case Not:
		return CountLeaves(v.Child)
	case Leaf:
		if sub, ok := v.Value.(Node); ok {
			return CountLeaves(sub)
		}
		return 1
	default:
		return 0
	}
}

func countAll(children []Node) int {
	total := 0
	for _, c := range children {
		total += CountLeaves(c)
	}
	return total
}
