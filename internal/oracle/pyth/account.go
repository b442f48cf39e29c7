package pyth

import (
	"encoding/binary"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/gagliardetto/solana-go"
)

// Account header constants of a v2 price account.
const (
	Magic            uint32 = 0xa1b2c3d4
	Version          uint32 = 2
	AccountTypePrice uint32 = 3
	PriceTypePrice   uint32 = 1

	// AccountSize is the full size of a price account, including the
	// 32 publisher components.
	AccountSize = 3312

	// MaxComponents is the number of publisher component slots.
	MaxComponents = 32
)

// Field offsets, little-endian.
const (
	offMagic         = 0
	offVersion       = 4
	offAccountType   = 8
	offSize          = 12
	offPriceType     = 16
	offExponent      = 20
	offNumComponents = 24
	offNumQuoters    = 28
	offLastSlot      = 32
	offValidSlot     = 40
	offEMAPrice      = 48 // rational: val, numer, denom
	offEMAConf       = 72
	offTimestamp     = 96
	offMinPublishers = 104
	offDrv2          = 105
	offDrv3          = 106
	offDrv4          = 108
	offProduct       = 112
	offNext          = 144
	offPrevSlot      = 176
	offPrevPrice     = 184
	offPrevConf      = 192
	offPrevTimestamp = 200
	offAggregate     = 208
	offComponents    = 240

	priceInfoSize = 32
	componentSize = 32 + 2*priceInfoSize
)

// Wire status values.
const (
	wireUnknown uint32 = 0
	wireTrading uint32 = 1
	wireHalted  uint32 = 2
	wireAuction uint32 = 3
	wireIgnored uint32 = 4
)

// PriceInfo is an aggregate or component price.
type PriceInfo struct {
	Price           int64
	Conf            uint64
	Status          oracle.Status
	CorporateAction uint32
	PublishSlot     uint64
}

// PriceAccount is the decoded form of a price account. Fields not listed
// here are left untouched when encoding into an existing buffer.
type PriceAccount struct {
	Exponent      int32
	NumComponents uint32
	NumQuoters    uint32
	LastSlot      uint64
	ValidSlot     uint64
	EMAPrice      int64
	EMAConf       uint64
	Timestamp     int64
	MinPublishers uint8
	Product       solana.PublicKey
	Next          solana.PublicKey
	PrevSlot      uint64
	PrevPrice     int64
	PrevConf      uint64
	PrevTimestamp int64
	Aggregate     PriceInfo
}

// NewPriceAccount builds a price account from conf. Publish time and slot
// default to clock.
func NewPriceAccount(conf oracle.Conf, clock oracle.Clock) (*PriceAccount, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	price, confidence, err := conf.Raw()
	if err != nil {
		return nil, err
	}
	emaPrice, emaConf, err := conf.RawEMA()
	if err != nil {
		return nil, err
	}
	ts, slot := conf.Timestamps(clock)
	prevSlot := slot
	if prevSlot > 0 {
		prevSlot--
	}
	return &PriceAccount{
		Exponent:      conf.Exponent,
		NumComponents: 1,
		NumQuoters:    1,
		LastSlot:      slot,
		ValidSlot:     slot,
		EMAPrice:      emaPrice,
		EMAConf:       emaConf,
		Timestamp:     ts,
		MinPublishers: 1,
		PrevSlot:      prevSlot,
		PrevPrice:     price,
		PrevConf:      confidence,
		PrevTimestamp: ts - 1,
		Aggregate: PriceInfo{
			Price:       price,
			Conf:        confidence,
			Status:      conf.Status,
			PublishSlot: slot,
		},
	}, nil
}

// Bytes encodes the account into a fresh buffer.
func (a *PriceAccount) Bytes() []byte {
	data := make([]byte, AccountSize)
	// cannot fail: the buffer has the right size
	_ = a.Encode(data)
	return data
}

// Encode writes the account into dst, which must be AccountSize bytes.
// Bytes of dst not covered by PriceAccount fields are preserved.
func (a *PriceAccount) Encode(dst []byte) error {
	if len(dst) != AccountSize {
		return oracle.Invalidf("pyth account is %d bytes, want %d", len(dst), AccountSize)
	}
	le := binary.LittleEndian
	le.PutUint32(dst[offMagic:], Magic)
	le.PutUint32(dst[offVersion:], Version)
	le.PutUint32(dst[offAccountType:], AccountTypePrice)
	le.PutUint32(dst[offSize:], AccountSize)
	le.PutUint32(dst[offPriceType:], PriceTypePrice)
	le.PutUint32(dst[offExponent:], uint32(a.Exponent))
	le.PutUint32(dst[offNumComponents:], a.NumComponents)
	le.PutUint32(dst[offNumQuoters:], a.NumQuoters)
	le.PutUint64(dst[offLastSlot:], a.LastSlot)
	le.PutUint64(dst[offValidSlot:], a.ValidSlot)
	putRational(dst[offEMAPrice:], a.EMAPrice)
	putRational(dst[offEMAConf:], int64(a.EMAConf))
	le.PutUint64(dst[offTimestamp:], uint64(a.Timestamp))
	dst[offMinPublishers] = a.MinPublishers
	copy(dst[offProduct:offProduct+32], a.Product[:])
	copy(dst[offNext:offNext+32], a.Next[:])
	le.PutUint64(dst[offPrevSlot:], a.PrevSlot)
	le.PutUint64(dst[offPrevPrice:], uint64(a.PrevPrice))
	le.PutUint64(dst[offPrevConf:], a.PrevConf)
	le.PutUint64(dst[offPrevTimestamp:], uint64(a.PrevTimestamp))
	putPriceInfo(dst[offAggregate:], a.Aggregate)

	// The single publisher component mirrors the aggregate.
	comp := dst[offComponents : offComponents+componentSize]
	putPriceInfo(comp[32:], a.Aggregate)
	putPriceInfo(comp[32+priceInfoSize:], a.Aggregate)
	return nil
}

// Decode parses a price account, checking its size and header markers.
func Decode(data []byte) (*PriceAccount, error) {
	if len(data) != AccountSize {
		return nil, oracle.Invalidf("pyth account is %d bytes, want %d", len(data), AccountSize)
	}
	le := binary.LittleEndian
	if m := le.Uint32(data[offMagic:]); m != Magic {
		return nil, oracle.Invalidf("pyth magic %#x, want %#x", m, Magic)
	}
	if v := le.Uint32(data[offVersion:]); v != Version {
		return nil, oracle.Invalidf("pyth version %d, want %d", v, Version)
	}
	if t := le.Uint32(data[offAccountType:]); t != AccountTypePrice {
		return nil, oracle.Invalidf("pyth account type %d, want %d", t, AccountTypePrice)
	}
	agg, err := readPriceInfo(data[offAggregate:])
	if err != nil {
		return nil, err
	}
	a := &PriceAccount{
		Exponent:      int32(le.Uint32(data[offExponent:])),
		NumComponents: le.Uint32(data[offNumComponents:]),
		NumQuoters:    le.Uint32(data[offNumQuoters:]),
		LastSlot:      le.Uint64(data[offLastSlot:]),
		ValidSlot:     le.Uint64(data[offValidSlot:]),
		EMAPrice:      int64(le.Uint64(data[offEMAPrice:])),
		EMAConf:       le.Uint64(data[offEMAConf:]),
		Timestamp:     int64(le.Uint64(data[offTimestamp:])),
		MinPublishers: data[offMinPublishers],
		PrevSlot:      le.Uint64(data[offPrevSlot:]),
		PrevPrice:     int64(le.Uint64(data[offPrevPrice:])),
		PrevConf:      le.Uint64(data[offPrevConf:]),
		PrevTimestamp: int64(le.Uint64(data[offPrevTimestamp:])),
		Aggregate:     agg,
	}
	copy(a.Product[:], data[offProduct:offProduct+32])
	copy(a.Next[:], data[offNext:offNext+32])
	return a, nil
}

// putRational writes {val, numer, denom} with denom 1.
func putRational(dst []byte, val int64) {
	le := binary.LittleEndian
	le.PutUint64(dst[0:], uint64(val))
	le.PutUint64(dst[8:], uint64(val))
	le.PutUint64(dst[16:], 1)
}

func putPriceInfo(dst []byte, p PriceInfo) {
	le := binary.LittleEndian
	le.PutUint64(dst[0:], uint64(p.Price))
	le.PutUint64(dst[8:], p.Conf)
	le.PutUint32(dst[16:], wireStatus(p.Status))
	le.PutUint32(dst[20:], p.CorporateAction)
	le.PutUint64(dst[24:], p.PublishSlot)
}

func readPriceInfo(src []byte) (PriceInfo, error) {
	le := binary.LittleEndian
	status, err := parseWireStatus(le.Uint32(src[16:]))
	if err != nil {
		return PriceInfo{}, err
	}
	return PriceInfo{
		Price:           int64(le.Uint64(src[0:])),
		Conf:            le.Uint64(src[8:]),
		Status:          status,
		CorporateAction: le.Uint32(src[20:]),
		PublishSlot:     le.Uint64(src[24:]),
	}, nil
}

func wireStatus(s oracle.Status) uint32 {
	switch s {
	case oracle.StatusTrading:
		return wireTrading
	case oracle.StatusHalted:
		return wireHalted
	case oracle.StatusAuction:
		return wireAuction
	default:
		return wireUnknown
	}
}

func parseWireStatus(v uint32) (oracle.Status, error) {
	switch v {
	case wireUnknown, wireIgnored:
		return oracle.StatusUnknown, nil
	case wireTrading:
		return oracle.StatusTrading, nil
	case wireHalted:
		return oracle.StatusHalted, nil
	case wireAuction:
		return oracle.StatusAuction, nil
	}
	return oracle.StatusUnknown, oracle.Invalidf("pyth status %d not recognized", v)
}
