package primitive

// Category is a bit set of permitted scalar conversions.
type Category int

// ConversionPair is a directed conversion between two kinds.
type ConversionPair struct {
	From, To Kind
}

const (
	CategorySafeNumber   Category = 1 << iota // int <-> float without precision loss
	CategoryUnsafeNumber                      // float -> int truncating the fraction
	CategoryTextNumber                        // int, float <-> string: textual number representation
	CategoryNumericBool                       // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                       // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                          // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryTimestamp                         // int(Unix seconds) <-> time.Time: Unix timestamp representation
	CategoryDuration                          // string(2h45m) <-> time.Duration: textual duration representation
	CategoryNanoseconds                       // int(nanoseconds) <-> time.Duration: numerical (integer) duration representation
	CategorySeconds                           // float(seconds) <-> time.Duration: numerical (floating-point) duration representation

	CategoryAll  = (1 << iota) - 1 // all categories combined
	CategoryNone = 0               // no categories selected

	// CategoryDefault is what content fields accept unless a schema says otherwise.
	CategoryDefault = CategorySafeNumber | CategoryTextNumber | CategoryTextualBool |
		CategoryDatetime | CategoryTimestamp | CategoryDuration
)

var conversionPairs map[Category]map[ConversionPair]struct{}

func init() {
	conversionPairs = map[Category]map[ConversionPair]struct{}{
		CategorySafeNumber: {
			{KindInt, KindFloat}: {},
			{KindFloat, KindInt}: {}, // integral values only
		},
		CategoryUnsafeNumber: {
			{KindFloat, KindInt}: {},
		},
		CategoryTextNumber: {
			{KindInt, KindString}:   {},
			{KindString, KindInt}:   {},
			{KindFloat, KindString}: {},
			{KindString, KindFloat}: {},
		},
		CategoryNumericBool: {
			{KindInt, KindBool}: {},
			{KindBool, KindInt}: {},
		},
		CategoryTextualBool: {
			{KindString, KindBool}: {},
			{KindBool, KindString}: {},
		},
		CategoryDatetime: {
			{KindString, KindTime}: {},
			{KindTime, KindString}: {},
		},
		CategoryTimestamp: {
			{KindInt, KindTime}: {},
			{KindTime, KindInt}: {},
		},
		CategoryDuration: {
			{KindString, KindDuration}: {},
			{KindDuration, KindString}: {},
		},
		CategoryNanoseconds: {
			{KindInt, KindDuration}: {},
			{KindDuration, KindInt}: {},
		},
		CategorySeconds: {
			{KindFloat, KindDuration}: {},
			{KindDuration, KindFloat}: {},
		},
	}
}

// Has reports whether every category in other is part of c.
func (c Category) Has(other Category) bool {
	return c&other == other
}

// Allows reports whether a value of kind from may be converted to kind to under
// the categories in c. Identity conversions and conversions to KindAny are
// always allowed.
func (c Category) Allows(from, to Kind) bool {
	if from == to || to == KindAny {
		return true
	}

	pair := ConversionPair{from, to}

	for category, pairs := range conversionPairs {
		if !c.Has(category) {
			continue
		}

		if _, ok := pairs[pair]; ok {
			return true
		}
	}

	return false
}
