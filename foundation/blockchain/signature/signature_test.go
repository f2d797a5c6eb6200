package signature_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	value := map[string]uint64{
		"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": 5,
		from: 5,
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v, r, s, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	addr, err := signature.FromAddress(value, v, r, s)
	if err != nil {
		t.Fatalf("Should be able to generate from address: %s", err)
	}

	if from != addr {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}

	str := signature.SignatureString(v, r, s)
	v2, r2, s2, err := signature.ToVRSFromHexSignature(str)
	if err != nil {
		t.Fatalf("Should be able to parse the signature string: %s", err)
	}

	if v.Cmp(v2) != 0 || r.Cmp(r2) != 0 || s.Cmp(s2) != 0 {
		t.Logf("got: %s", signature.SignatureString(v2, r2, s2))
		t.Logf("exp: %s", str)
		t.Fatalf("Should get back the same signature values.")
	}
}

func Test_SignDeterministic(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v1, r1, s1, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	v2, r2, s2, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	sig1 := signature.SignatureString(v1, r1, s1)
	sig2 := signature.SignatureString(v2, r2, s2)
	if sig1 != sig2 {
		t.Logf("got: %s", sig2)
		t.Logf("exp: %s", sig1)
		t.Fatalf("Should get the same signature for the same data.")
	}
}

func Test_TamperedData(t *testing.T) {
	value := map[string]uint64{"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": 5}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v, r, s, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	value["0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"] = 500

	addr, err := signature.FromAddress(value, v, r, s)
	if err == nil && addr == from {
		t.Fatalf("Should not recover the signer from tampered data.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0x4a829d842ab472b03f7b09f037b4d1d6d041a993d6016e8aaf217b64c9e12f2a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}

func Test_HashOrder(t *testing.T) {
	h1 := signature.Hash(1, "a")
	h2 := signature.Hash("a", 1)

	if h1 != "0x2010945388e2de98f5651051478912aa4ff38bb13a2cdb1a2c257bb97fbf98ff" {
		t.Fatalf("Should get back the right hash: %s", h1)
	}

	if h1 == h2 {
		t.Fatalf("Should get a different hash when the field order changes.")
	}
}

func Test_BadSignatureString(t *testing.T) {
	if _, _, _, err := signature.ToVRSFromHexSignature("0x1234"); err == nil {
		t.Fatalf("Should not be able to parse a short signature.")
	}

	if _, _, _, err := signature.ToVRSFromHexSignature("not-hex"); err == nil {
		t.Fatalf("Should not be able to parse a non hex signature.")
	}
}
