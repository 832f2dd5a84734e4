package core

import "fmt"

// OpKind names the kind of an operation as it appears on the wire.
type OpKind string

const (
	KindSkip   OpKind = "skip"
	KindDelete OpKind = "delete"
	KindInsert OpKind = "insert"
)

// Op is a single edit operation of an operation log.
// The set of implementations is closed: Skip, Delete, Insert and Unknown.
type Op interface {
	Kind() OpKind
	isOp()
}

// Skip advances the cursor without altering the buffer.
type Skip struct {
	Count int
}

// Delete removes Count characters at the cursor.
type Delete struct {
	Count int
}

// Insert places Chars at the cursor.
type Insert struct {
	Chars string
}

// Unknown is a record whose kind is not recognized.
// Replay ignores it.
type Unknown struct {
	Name string
}

func (Skip) Kind() OpKind      { return KindSkip }
func (Delete) Kind() OpKind    { return KindDelete }
func (Insert) Kind() OpKind    { return KindInsert }
func (u Unknown) Kind() OpKind { return OpKind(u.Name) }

func (Skip) isOp()    {}
func (Delete) isOp()  {}
func (Insert) isOp()  {}
func (Unknown) isOp() {}

func (s Skip) String() string    { return fmt.Sprintf("skip(%d)", s.Count) }
func (d Delete) String() string  { return fmt.Sprintf("delete(%d)", d.Count) }
func (i Insert) String() string  { return fmt.Sprintf("insert(%q)", i.Chars) }
func (u Unknown) String() string { return fmt.Sprintf("unknown(%q)", u.Name) }
