package types

type (
	// OptionalInteger is an int that may be unset. It is used for values
	// that are armed separately from being set, such as the bounds of a
	// loop region.
	OptionalInteger struct {
		value  int
		exists bool
	}
)

func NewOptionalInteger(value int, exists bool) OptionalInteger {
	return OptionalInteger{value, exists}
}

func NewOptionalIntegerOf(value int) OptionalInteger {
	return OptionalInteger{
		value:  value,
		exists: true,
	}
}

func NewEmptyOptionalInteger() OptionalInteger {
	return OptionalInteger{
		exists: false,
	}
}

func (i OptionalInteger) Unpack() (int, bool) {
	return i.value, i.exists
}

func (i OptionalInteger) Value() int {
	if !i.exists {
		panic("Access value of empty OptionalInteger")
	}
	return i.value
}

func (i OptionalInteger) Empty() bool {
	return !i.exists
}

func (i OptionalInteger) Equals(value int) bool {
	return i.exists && i.value == value
}
