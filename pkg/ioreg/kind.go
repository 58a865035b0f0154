package ioreg

// Kind is the type of a plist element, derived from its XML tag.
type Kind int

const (
	KindUnknown Kind = iota
	KindPlist
	KindDict
	KindArray
	KindKey
	KindString
	KindData
	KindInteger
	KindReal
	KindDate
	KindTrue
	KindFalse
)

var kindTags = map[Kind]string{
	KindPlist:   "plist",
	KindDict:    "dict",
	KindArray:   "array",
	KindKey:     "key",
	KindString:  "string",
	KindData:    "data",
	KindInteger: "integer",
	KindReal:    "real",
	KindDate:    "date",
	KindTrue:    "true",
	KindFalse:   "false",
}

var tagKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTags))
	for k, tag := range kindTags {
		m[tag] = k
	}
	return m
}()

// KindOf returns the Kind for an XML tag name. Unrecognized tags are
// KindUnknown.
func KindOf(tag string) Kind {
	if k, ok := tagKinds[tag]; ok {
		return k
	}
	return KindUnknown
}

func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return "unknown"
}
