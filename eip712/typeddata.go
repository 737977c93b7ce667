package eip712

import (
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/consensus"
)

// ErrTypedData is returned when a typed-data payload
// is not a ChiaCoinSpend request.
var ErrTypedData = errors.New("unsupported typed data")

// Field is one member of a typed-data struct type.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DomainData is the domain object of a typed-data payload.
type DomainData struct {
	Name    string     `json:"name"`
	Version string     `json:"version,omitempty"`
	Salt    bc.Bytes32 `json:"salt"`
}

// Message is the ChiaCoinSpend message object.
type Message struct {
	CoinID              bc.Bytes32 `json:"coin_id"`
	DelegatedPuzzleHash bc.Bytes32 `json:"delegated_puzzle_hash"`
}

// TypedData is the eth_signTypedData_v4 request
// a wallet is asked to sign.
type TypedData struct {
	Types       map[string][]Field `json:"types"`
	PrimaryType string             `json:"primaryType"`
	Domain      DomainData         `json:"domain"`
	Message     Message            `json:"message"`
}

var messageFields = []Field{
	{Name: "coin_id", Type: "bytes32"},
	{Name: "delegated_puzzle_hash", Type: "bytes32"},
}

func (s Scheme) domainFields() []Field {
	f := []Field{{Name: "name", Type: "string"}}
	if s == Versioned {
		f = append(f, Field{Name: "version", Type: "string"})
	}
	return append(f, Field{Name: "salt", Type: "bytes32"})
}

// TypedData returns the signing request for the given spend.
// Its hash is d.HashToSign(coinID, delegatedPuzzleHash).
func (d Domain) TypedData(coinID, delegatedPuzzleHash bc.Bytes32) *TypedData {
	td := &TypedData{
		Types: map[string][]Field{
			"EIP712Domain": d.Scheme.domainFields(),
			PrimaryType:    messageFields,
		},
		PrimaryType: PrimaryType,
		Domain: DomainData{
			Name: DomainName,
			Salt: d.Network.GenesisChallenge,
		},
		Message: Message{
			CoinID:              coinID,
			DelegatedPuzzleHash: delegatedPuzzleHash,
		},
	}
	if d.Scheme == Versioned {
		td.Domain.Version = DomainVersion
	}
	return td
}

// SigningDomain recovers the domain td was built for.
// It fails if td is not a ChiaCoinSpend request
// in one of the known schemes.
func (td *TypedData) SigningDomain() (Domain, error) {
	if td.PrimaryType != PrimaryType {
		return Domain{}, errors.WithDetailf(ErrTypedData, "primary type %q", td.PrimaryType)
	}
	if td.Domain.Name != DomainName {
		return Domain{}, errors.WithDetailf(ErrTypedData, "domain name %q", td.Domain.Name)
	}
	var s Scheme
	switch td.Domain.Version {
	case "":
		s = Unversioned
	case DomainVersion:
		s = Versioned
	default:
		return Domain{}, errors.WithDetailf(ErrTypedData, "domain version %q", td.Domain.Version)
	}
	if !fieldsEqual(td.Types["EIP712Domain"], s.domainFields()) {
		return Domain{}, errors.WithDetail(ErrTypedData, "EIP712Domain type does not match the domain")
	}
	if !fieldsEqual(td.Types[PrimaryType], messageFields) {
		return Domain{}, errors.WithDetailf(ErrTypedData, "%s type is not %s", PrimaryType, TypeString)
	}
	return Domain{Scheme: s, Network: consensus.ForChallenge(td.Domain.Salt)}, nil
}

// HashToSign returns the digest of td.
func (td *TypedData) HashToSign() (bc.Bytes32, error) {
	d, err := td.SigningDomain()
	if err != nil {
		return bc.Bytes32{}, err
	}
	return d.HashToSign(td.Message.CoinID, td.Message.DelegatedPuzzleHash), nil
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
