package switchboard

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
)

// AccountSize is the size of an AggregatorAccountData account, discriminator included.
const AccountSize = 3851

// Discriminator is the 8-byte account discriminator of AggregatorAccountData.
var Discriminator = [8]byte{217, 230, 65, 101, 201, 162, 27, 125}

// Field offsets. The account is packed, so there is no padding between fields.
const (
	offDiscriminator          = 0
	offName                   = 8
	offOracleRequestBatchSize = 232
	offMinOracleResults       = 236
	offMinJobResults          = 240

	offLatestRound        = 341
	offNumSuccess         = offLatestRound + 0
	offNumError           = offLatestRound + 4
	offIsClosed           = offLatestRound + 8
	offRoundOpenSlot      = offLatestRound + 9
	offRoundOpenTimestamp = offLatestRound + 17
	offResult             = offLatestRound + 25
	offStdDeviation       = offResult + decimalSize
	offMinResponse        = offStdDeviation + decimalSize
	offMaxResponse        = offMinResponse + decimalSize

	nameSize = 32
	// decimalSize is a packed SwitchboardDecimal: i128 mantissa, u32 scale.
	decimalSize = 20

	// reportedOracles is written into num_success.
	reportedOracles = 3
)

// Decimal is a SwitchboardDecimal: Mantissa * 10^-Scale.
type Decimal struct {
	Mantissa *big.Int
	Scale    uint32
}

// Float returns the decimal as a float.
func (d Decimal) Float() float64 {
	return oracle.FromScaled(d.Mantissa, d.Scale)
}

// NewDecimal scales value by 10^decimals.
func NewDecimal(value float64, decimals uint8) (Decimal, error) {
	mantissa, err := oracle.ToScaled(value, decimals)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Mantissa: mantissa, Scale: uint32(decimals)}, nil
}

// Aggregator is the decoded latest confirmed round of an aggregator account.
type Aggregator struct {
	Name         string
	NumSuccess   uint32
	NumError     uint32
	IsClosed     bool
	Slot         uint64
	Timestamp    int64
	Result       Decimal
	StdDeviation Decimal
}

// NewAggregator builds an aggregator from conf. The confidence is written as
// the standard deviation and both use conf.Decimals as their scale.
func NewAggregator(conf oracle.Conf, clock oracle.Clock) (*Aggregator, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	result, err := NewDecimal(conf.Value, conf.Decimals)
	if err != nil {
		return nil, err
	}
	std, err := NewDecimal(conf.Confidence, conf.Decimals)
	if err != nil {
		return nil, err
	}
	ts, slot := conf.Timestamps(clock)
	return &Aggregator{
		Name:         conf.Description,
		NumSuccess:   reportedOracles,
		IsClosed:     true,
		Slot:         slot,
		Timestamp:    ts,
		Result:       result,
		StdDeviation: std,
	}, nil
}

// Bytes encodes the aggregator into a fresh account buffer.
func (a *Aggregator) Bytes() ([]byte, error) {
	data := make([]byte, AccountSize)
	le := binary.LittleEndian
	le.PutUint32(data[offOracleRequestBatchSize:], 1)
	le.PutUint32(data[offMinOracleResults:], 1)
	le.PutUint32(data[offMinJobResults:], 1)
	if err := a.Encode(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Encode writes the aggregator into dst, which must be AccountSize bytes.
// Bytes outside the name and latest confirmed round are preserved.
func (a *Aggregator) Encode(dst []byte) error {
	if len(dst) != AccountSize {
		return oracle.Invalidf("switchboard account is %d bytes, want %d", len(dst), AccountSize)
	}
	if len(a.Name) > nameSize {
		return oracle.Invalidf("switchboard name exceeds %d bytes", nameSize)
	}
	le := binary.LittleEndian
	copy(dst[offDiscriminator:], Discriminator[:])

	name := dst[offName : offName+nameSize]
	for i := range name {
		name[i] = 0
	}
	copy(name, a.Name)

	le.PutUint32(dst[offNumSuccess:], a.NumSuccess)
	le.PutUint32(dst[offNumError:], a.NumError)
	dst[offIsClosed] = 0
	if a.IsClosed {
		dst[offIsClosed] = 1
	}
	le.PutUint64(dst[offRoundOpenSlot:], a.Slot)
	le.PutUint64(dst[offRoundOpenTimestamp:], uint64(a.Timestamp))
	if err := putDecimal(dst[offResult:], a.Result); err != nil {
		return err
	}
	if err := putDecimal(dst[offStdDeviation:], a.StdDeviation); err != nil {
		return err
	}
	// A single-valued round: min and max response equal the result.
	if err := putDecimal(dst[offMinResponse:], a.Result); err != nil {
		return err
	}
	return putDecimal(dst[offMaxResponse:], a.Result)
}

// Decode parses an aggregator account, checking its size and discriminator.
func Decode(data []byte) (*Aggregator, error) {
	if len(data) != AccountSize {
		return nil, oracle.Invalidf("switchboard account is %d bytes, want %d", len(data), AccountSize)
	}
	if !bytes.Equal(data[offDiscriminator:offDiscriminator+8], Discriminator[:]) {
		return nil, oracle.Invalidf("switchboard discriminator %x not recognized", data[:8])
	}
	le := binary.LittleEndian
	return &Aggregator{
		Name:         string(bytes.TrimRight(data[offName:offName+nameSize], "\x00")),
		NumSuccess:   le.Uint32(data[offNumSuccess:]),
		NumError:     le.Uint32(data[offNumError:]),
		IsClosed:     data[offIsClosed] != 0,
		Slot:         le.Uint64(data[offRoundOpenSlot:]),
		Timestamp:    int64(le.Uint64(data[offRoundOpenTimestamp:])),
		Result:       readDecimal(data[offResult:]),
		StdDeviation: readDecimal(data[offStdDeviation:]),
	}, nil
}

func putDecimal(dst []byte, d Decimal) error {
	mantissa := d.Mantissa
	if mantissa == nil {
		mantissa = new(big.Int)
	}
	if err := oracle.PutInt128(dst[0:16], mantissa); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst[16:], d.Scale)
	return nil
}

func readDecimal(src []byte) Decimal {
	return Decimal{
		Mantissa: oracle.Int128(src[0:16]),
		Scale:    binary.LittleEndian.Uint32(src[16:]),
	}
}
