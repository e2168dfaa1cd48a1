package object

// Typeless preserves an object's desc/body as byte-exact encoded blobs,
// so that a later typed reification of the same bytes reproduces the
// same id (spec.md §3: "Typeless decode preserves byte-exact desc/body
// so that a subsequent typed reification of the same bytes produces the
// same id"). It never re-decodes desc/body content, only the context
// header enough to know obj_type and category.
type Typeless struct {
	ObjType  uint16
	Category Category
	DescRaw  []byte // Serialize-purpose encoding, for full-fidelity round trip
	Id       ObjectId
	HasBody  bool
	BodyRaw  []byte
	DescSign []Signature
	BodySign []Signature
	Nonce    []byte
}

// CalculateId returns the id captured at conversion time (from the
// Hash-purpose encoding of the original desc), making it a fixed point
// across a typeless round trip: encode(x, Hash) == encode(decode(encode(x,
// Hash)), Hash), per spec.md §4.2.
func (t Typeless) CalculateId() ObjectId {
	return t.Id
}
