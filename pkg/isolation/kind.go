package isolation

import "fmt"

// Kind enumerates the tenant-scoped entity kinds the validator knows about.
// Each kind maps at compile time to its table and id column, so an unknown
// table name is impossible for static callers; dynamic input goes through
// ParseKind and gets an explicit UnknownKindError.
type Kind int

const (
	KindSchool Kind = iota
	KindProduct
	KindInventoryItem
	KindBatch
	KindUser
)

// kindNames are the wire/config names, kept in Portuguese to match the
// platform's database schema.
var kindNames = map[Kind]string{
	KindSchool:        "escola",
	KindProduct:       "produto",
	KindInventoryItem: "estoque_item",
	KindBatch:         "lote",
	KindUser:          "usuario",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// table returns the table name for the kind. The switch is exhaustive over
// the declared kinds; valid() guards dynamic values before this is called.
func (k Kind) table() string {
	switch k {
	case KindSchool:
		return "escolas"
	case KindProduct:
		return "produtos"
	case KindInventoryItem:
		return "estoque_itens"
	case KindBatch:
		return "lotes"
	case KindUser:
		return "usuarios"
	}
	return ""
}

func (k Kind) valid() bool {
	return k.table() != ""
}

// ParseKind maps a dynamic entity-type string to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, &UnknownKindError{Name: s}
}
