package chainlink

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/gagliardetto/solana-go"
)

// Layout of a transmissions account: a fixed header followed by a ring of
// the most recent rounds.
const (
	HeaderSize       = 192
	TransmissionSize = 48
	RingLength       = 16
	AccountSize      = HeaderSize + TransmissionSize*RingLength

	Version           uint8  = 1
	StateInitialized  uint8  = 1
	FlaggingThreshold uint32 = 1000
	Granularity       uint8  = 1

	descriptionSize   = 32
	reportedObservers = 3
)

const (
	offVersion           = 0
	offState             = 1
	offOwner             = 2
	offProposedOwner     = 34
	offWriter            = 66
	offDescription       = 98
	offDecimals          = 130
	offFlaggingThreshold = 131
	offLatestRound       = 135
	offGranularity       = 141
	offLiveLength        = 142
	offLiveCursor        = 150

	txSlot         = 0
	txTimestamp    = 8
	txAnswer       = 16
	txObservations = 32
	txObservers    = 33
)

// ErrRoundNotFound is returned for a round that is not in the ring.
var ErrRoundNotFound = errors.New("round not found")

// Transmission is one round of a feed.
type Transmission struct {
	Slot         uint64
	Timestamp    uint32
	Answer       *big.Int
	Observations uint8
	Observers    uint8
}

// Feed is the decoded header and latest transmission of a transmissions account.
type Feed struct {
	Owner         solana.PublicKey
	ProposedOwner solana.PublicKey
	Writer        solana.PublicKey
	Description   string
	Decimals      uint8
	LatestRound   uint32
	LiveLength    uint32
	Latest        Transmission
}

// Timestamp32 narrows a unix timestamp to the 32-bit field of a transmission.
func Timestamp32(ts int64) (uint32, error) {
	if ts < 0 || ts > math.MaxUint32 {
		return 0, oracle.Invalidf("timestamp %d does not fit in 32 bits", ts)
	}
	return uint32(ts), nil
}

// NewFeed builds a feed at round 1 from conf.
func NewFeed(conf oracle.Conf, clock oracle.Clock) (*Feed, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	answer, err := oracle.ToScaled(conf.Value, conf.Decimals)
	if err != nil {
		return nil, err
	}
	ts, slot := conf.Timestamps(clock)
	ts32, err := Timestamp32(ts)
	if err != nil {
		return nil, err
	}
	return &Feed{
		Description: conf.Description,
		Decimals:    conf.Decimals,
		LatestRound: 1,
		LiveLength:  RingLength,
		Latest: Transmission{
			Slot:         slot,
			Timestamp:    ts32,
			Answer:       answer,
			Observations: reportedObservers,
			Observers:    reportedObservers,
		},
	}, nil
}

// Cursor returns the ring index of the latest round.
func (f *Feed) Cursor() uint32 {
	return ringIndex(f.LatestRound)
}

func ringIndex(round uint32) uint32 {
	return (round - 1) % RingLength
}

// Transmit starts a new round carrying answer.
func (f *Feed) Transmit(answer *big.Int, slot uint64, timestamp uint32) error {
	if f.LatestRound == math.MaxUint32 {
		return oracle.Invalidf("round id overflows")
	}
	f.LatestRound++
	f.Latest = Transmission{
		Slot:         slot,
		Timestamp:    timestamp,
		Answer:       answer,
		Observations: reportedObservers,
		Observers:    reportedObservers,
	}
	return nil
}

// Price returns the latest answer in quote units.
func (f *Feed) Price() float64 {
	return oracle.FromScaled(f.Latest.Answer, uint32(f.Decimals))
}

// Bytes encodes the feed into a fresh account buffer.
func (f *Feed) Bytes() ([]byte, error) {
	data := make([]byte, AccountSize)
	if err := f.Encode(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Encode writes the header and the latest transmission into dst. Older rounds
// already in the ring are preserved.
func (f *Feed) Encode(dst []byte) error {
	if len(dst) != AccountSize {
		return oracle.Invalidf("chainlink account is %d bytes, want %d", len(dst), AccountSize)
	}
	if len(f.Description) > descriptionSize {
		return oracle.Invalidf("chainlink description exceeds %d bytes", descriptionSize)
	}
	if f.LatestRound == 0 {
		return oracle.Invalidf("chainlink round id must be positive")
	}
	le := binary.LittleEndian
	dst[offVersion] = Version
	dst[offState] = StateInitialized
	copy(dst[offOwner:offOwner+32], f.Owner[:])
	copy(dst[offProposedOwner:offProposedOwner+32], f.ProposedOwner[:])
	copy(dst[offWriter:offWriter+32], f.Writer[:])
	desc := dst[offDescription : offDescription+descriptionSize]
	for i := range desc {
		desc[i] = 0
	}
	copy(desc, f.Description)
	dst[offDecimals] = f.Decimals
	le.PutUint32(dst[offFlaggingThreshold:], FlaggingThreshold)
	le.PutUint32(dst[offLatestRound:], f.LatestRound)
	dst[offGranularity] = Granularity
	le.PutUint32(dst[offLiveLength:], RingLength)
	le.PutUint32(dst[offLiveCursor:], f.Cursor())

	return putTransmission(dst[HeaderSize+int(f.Cursor())*TransmissionSize:], f.Latest)
}

// Decode parses a transmissions account and its latest round.
func Decode(data []byte) (*Feed, error) {
	if len(data) != AccountSize {
		return nil, oracle.Invalidf("chainlink account is %d bytes, want %d", len(data), AccountSize)
	}
	if data[offVersion] != Version {
		return nil, oracle.Invalidf("chainlink version %d, want %d", data[offVersion], Version)
	}
	if data[offState] != StateInitialized {
		return nil, oracle.Invalidf("chainlink account is not initialized")
	}
	le := binary.LittleEndian
	f := &Feed{
		Description: string(bytes.TrimRight(data[offDescription:offDescription+descriptionSize], "\x00")),
		Decimals:    data[offDecimals],
		LatestRound: le.Uint32(data[offLatestRound:]),
		LiveLength:  le.Uint32(data[offLiveLength:]),
	}
	if f.LiveLength != RingLength {
		return nil, oracle.Invalidf("chainlink live length %d, want %d", f.LiveLength, RingLength)
	}
	if f.LatestRound == 0 {
		return nil, oracle.Invalidf("chainlink account has no rounds")
	}
	if cursor := le.Uint32(data[offLiveCursor:]); cursor != f.Cursor() {
		return nil, oracle.Invalidf("chainlink cursor %d does not match round %d", cursor, f.LatestRound)
	}
	copy(f.Owner[:], data[offOwner:offOwner+32])
	copy(f.ProposedOwner[:], data[offProposedOwner:offProposedOwner+32])
	copy(f.Writer[:], data[offWriter:offWriter+32])
	f.Latest = readTransmission(data[HeaderSize+int(f.Cursor())*TransmissionSize:])
	return f, nil
}

// ReadRound returns round from the ring of data. Only the last RingLength
// rounds are available.
func ReadRound(data []byte, round uint32) (Transmission, error) {
	f, err := Decode(data)
	if err != nil {
		return Transmission{}, err
	}
	if round == 0 || round > f.LatestRound || f.LatestRound-round >= RingLength {
		return Transmission{}, fmt.Errorf("round %d (latest %d): %w", round, f.LatestRound, ErrRoundNotFound)
	}
	return readTransmission(data[HeaderSize+int(ringIndex(round))*TransmissionSize:]), nil
}

func putTransmission(dst []byte, t Transmission) error {
	le := binary.LittleEndian
	answer := t.Answer
	if answer == nil {
		answer = new(big.Int)
	}
	for i := 0; i < TransmissionSize; i++ {
		dst[i] = 0
	}
	le.PutUint64(dst[txSlot:], t.Slot)
	le.PutUint32(dst[txTimestamp:], t.Timestamp)
	if err := oracle.PutInt128(dst[txAnswer:], answer); err != nil {
		return err
	}
	dst[txObservations] = t.Observations
	dst[txObservers] = t.Observers
	return nil
}

func readTransmission(src []byte) Transmission {
	le := binary.LittleEndian
	return Transmission{
		Slot:         le.Uint64(src[txSlot:]),
		Timestamp:    le.Uint32(src[txTimestamp:]),
		Answer:       oracle.Int128(src[txAnswer:]),
		Observations: src[txObservations],
		Observers:    src[txObservers],
	}
}
