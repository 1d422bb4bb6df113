package message

// Value is a SassScript value passed to or returned from a host function.
// Implementations: *String, *Number, *RGBColor, *HSLColor, *List, *Map,
// Singleton, *CompilerFunction, *HostFunction.
type Value interface {
	value()
}

// Compile-time verification that all value types implement Value.
var (
	_ Value = (*String)(nil)
	_ Value = (*Number)(nil)
	_ Value = (*RGBColor)(nil)
	_ Value = (*HSLColor)(nil)
	_ Value = (*List)(nil)
	_ Value = (*Map)(nil)
	_ Value = Singleton(0)
	_ Value = (*CompilerFunction)(nil)
	_ Value = (*HostFunction)(nil)
)

// String is a SassScript string.
type String struct {
	Text   string
	Quoted bool
}

func (*String) value() {}

// Number is a SassScript number with optional units.
type Number struct {
	Value        float64
	Numerators   []string
	Denominators []string
}

func (*Number) value() {}

// RGBColor is a color in the RGB space; channels are 0-255, alpha 0-1.
type RGBColor struct {
	Red   uint32
	Green uint32
	Blue  uint32
	Alpha float64
}

func (*RGBColor) value() {}

// HSLColor is a color in the HSL space.
type HSLColor struct {
	Hue        float64
	Saturation float64
	Lightness  float64
	Alpha      float64
}

func (*HSLColor) value() {}

// ListSeparator is the separator of a SassScript list.
type ListSeparator int32

const (
	ListSeparatorComma     ListSeparator = 0
	ListSeparatorSpace     ListSeparator = 1
	ListSeparatorSlash     ListSeparator = 2
	ListSeparatorUndecided ListSeparator = 3
)

// List is a SassScript list.
type List struct {
	Separator   ListSeparator
	HasBrackets bool
	Contents    []Value
}

func (*List) value() {}

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is a SassScript map. Entry order is preserved.
type Map struct {
	Entries []MapEntry
}

func (*Map) value() {}

// Singleton is one of the singleton SassScript values.
type Singleton int32

const (
	SingletonTrue  Singleton = 0
	SingletonFalse Singleton = 1
	SingletonNull  Singleton = 2
)

func (Singleton) value() {}

// CompilerFunction is a reference to a function defined in the compiler.
type CompilerFunction struct {
	ID uint32
}

func (*CompilerFunction) value() {}

// HostFunction is a first-class reference to a function defined in the host.
type HostFunction struct {
	ID        uint32
	Signature string
}

func (*HostFunction) value() {}
