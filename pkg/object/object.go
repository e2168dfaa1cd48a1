package object

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// Object is a complete named object: the identity-producing Desc, an
// optional Body, and the signatures/nonce that sit outside both (so that
// neither signing nor replay-salting ever perturbs the id). Desc and
// Body each carry their own content codec so Object stays generic over
// both independently, the way dsgobj's concrete wire types (Contract,
// ContractState, Challenge, Proof, DataSourceStub) each plug in their own pair.
type Object[DescT, BodyT any] struct {
	Desc     Desc[DescT]
	HasBody  bool
	Body     Body[BodyT]
	DescSign []Signature
	BodySign []Signature
	Nonce    []byte

	id     ObjectId
	idSet  bool
}

// New builds an object from a desc and an optional body, leaving the id
// to be computed lazily on the first IdOf call.
func New[DescT, BodyT any](desc Desc[DescT], body *Body[BodyT]) Object[DescT, BodyT] {
	obj := Object[DescT, BodyT]{Desc: desc}
	if body != nil {
		obj.HasBody = true
		obj.Body = *body
	}
	return obj
}

// IdOf produces the canonical id by encoding Desc with purpose=Hash and
// hashing the result (spec.md §4.2). The result is cached; mutating Body
// afterwards never invalidates it, mutating Desc does (callers must not
// mutate Desc in place after computing an id).
func IdOf[DescT, BodyT any](o *Object[DescT, BodyT], descCodec codec.ValueCodec[DescT]) (ObjectId, error) {
	if o.idSet {
		return o.id, nil
	}
	n := MeasureDesc(o.Desc, descCodec, codec.Hash, nil)
	buf := make([]byte, n)
	if _, err := EncodeDesc(buf, o.Desc, descCodec, codec.Hash, nil); err != nil {
		return ObjectId{}, err
	}
	o.id = CalculateId(buf)
	o.idSet = true
	return o.id, nil
}

func MeasureObject[DescT, BodyT any](o Object[DescT, BodyT], descCodec codec.ValueCodec[DescT], bodyCodec codec.ValueCodec[BodyT]) int {
	n := MeasureDesc(o.Desc, descCodec, codec.Serialize, nil)
	n += codec.MeasureBool()
	if o.HasBody {
		n += MeasureBody(o.Body, bodyCodec, codec.Serialize)
	}
	n += codec.MeasureSeq(SignatureCodec, o.DescSign, codec.Serialize)
	n += codec.MeasureSeq(SignatureCodec, o.BodySign, codec.Serialize)
	n += codec.MeasureBlob16(o.Nonce)
	return n
}

// EncodeObject writes the full serialize-purpose wire form: desc, a
// has-body flag, body if present, desc signatures, body signatures,
// nonce. This order is this implementation's layout for what sits
// "outside" Desc (spec.md §4.2 only pins Desc's internal field order).
func EncodeObject[DescT, BodyT any](buf []byte, o Object[DescT, BodyT], descCodec codec.ValueCodec[DescT], bodyCodec codec.ValueCodec[BodyT]) ([]byte, error) {
	rest, err := EncodeDesc(buf, o.Desc, descCodec, codec.Serialize, nil)
	if err != nil {
		return nil, err
	}
	rest, err = codec.PutBool(rest, o.HasBody)
	if err != nil {
		return nil, err
	}
	if o.HasBody {
		rest, err = EncodeBody(rest, o.Body, bodyCodec, codec.Serialize)
		if err != nil {
			return nil, err
		}
	}
	rest, err = codec.PutSeq(rest, SignatureCodec, o.DescSign, codec.Serialize)
	if err != nil {
		return nil, err
	}
	rest, err = codec.PutSeq(rest, SignatureCodec, o.BodySign, codec.Serialize)
	if err != nil {
		return nil, err
	}
	return codec.PutBlob16(rest, o.Nonce)
}

func DecodeObject[DescT, BodyT any](buf []byte, descCodec codec.ValueCodec[DescT], bodyCodec codec.ValueCodec[BodyT]) (Object[DescT, BodyT], []byte, error) {
	var o Object[DescT, BodyT]
	desc, rest, err := DecodeDesc(buf, descCodec)
	if err != nil {
		return o, nil, err
	}
	o.Desc = desc

	hasBody, rest, err := codec.GetBool(rest)
	if err != nil {
		return o, nil, err
	}
	o.HasBody = hasBody
	if hasBody {
		body, rest2, err := DecodeBody(rest, bodyCodec)
		if err != nil {
			return o, nil, err
		}
		o.Body = body
		rest = rest2
	}

	descSign, rest, err := codec.GetSeq(rest, SignatureCodec)
	if err != nil {
		return o, nil, err
	}
	o.DescSign = descSign

	bodySign, rest, err := codec.GetSeq(rest, SignatureCodec)
	if err != nil {
		return o, nil, err
	}
	o.BodySign = bodySign

	nonce, rest, err := codec.GetBlob16(rest)
	if err != nil {
		return o, nil, err
	}
	o.Nonce = nonce

	return o, rest, nil
}

// ConvertToTypeless reinterprets a typed object as a Typeless one,
// verifying that obj_type actually belongs to the claimed category
// (spec.md §4.2).
func ConvertToTypeless[DescT, BodyT any](o Object[DescT, BodyT], category Category, descCodec codec.ValueCodec[DescT], bodyCodec codec.ValueCodec[BodyT]) (Typeless, error) {
	if CategoryOf(o.Desc.Context.ObjType) != category {
		return Typeless{}, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotMatch),
			"obj_type %d is not in category %s", o.Desc.Context.ObjType, category)
	}

	descBuf := make([]byte, MeasureDesc(o.Desc, descCodec, codec.Serialize, nil))
	if _, err := EncodeDesc(descBuf, o.Desc, descCodec, codec.Serialize, nil); err != nil {
		return Typeless{}, err
	}

	hashBuf := make([]byte, MeasureDesc(o.Desc, descCodec, codec.Hash, nil))
	if _, err := EncodeDesc(hashBuf, o.Desc, descCodec, codec.Hash, nil); err != nil {
		return Typeless{}, err
	}

	t := Typeless{
		ObjType:  o.Desc.Context.ObjType,
		Category: category,
		DescRaw:  descBuf,
		Id:       CalculateId(hashBuf),
		HasBody:  o.HasBody,
		DescSign: o.DescSign,
		BodySign: o.BodySign,
		Nonce:    o.Nonce,
	}
	if o.HasBody {
		bodyBuf := make([]byte, MeasureBody(o.Body, bodyCodec, codec.Serialize))
		if _, err := EncodeBody(bodyBuf, o.Body, bodyCodec, codec.Serialize); err != nil {
			return Typeless{}, err
		}
		t.BodyRaw = bodyBuf
	}
	return t, nil
}

// ConvertFromTypeless reifies a Typeless back into a typed Object,
// asserting DescT's expected obj_type matches the typeless payload's.
func ConvertFromTypeless[DescT, BodyT any](t Typeless, expectObjType uint16, descCodec codec.ValueCodec[DescT], bodyCodec codec.ValueCodec[BodyT]) (Object[DescT, BodyT], error) {
	var o Object[DescT, BodyT]
	if t.ObjType != expectObjType {
		return o, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotMatch),
			"typeless obj_type %d does not match expected %d", t.ObjType, expectObjType)
	}
	desc, leftover, err := DecodeDesc(t.DescRaw, descCodec)
	if err != nil {
		return o, err
	}
	if len(leftover) != 0 {
		return o, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "trailing bytes in typeless desc")
	}
	o.Desc = desc
	o.HasBody = t.HasBody
	if t.HasBody {
		body, leftover, err := DecodeBody(t.BodyRaw, bodyCodec)
		if err != nil {
			return o, err
		}
		if len(leftover) != 0 {
			return o, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "trailing bytes in typeless body")
		}
		o.Body = body
	}
	o.DescSign = t.DescSign
	o.BodySign = t.BodySign
	o.Nonce = t.Nonce
	return o, nil
}
