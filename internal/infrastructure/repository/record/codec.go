package record

import (
	"bytes"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
)

// Record keys, kept from the browser storage the data originally lived in.
const (
	KeyTeamNames = "beloteTeamNames"
	KeyRounds    = "beloteRounds"
)

var ErrMalformed = errors.New("malformed session record")

// Mode tells which decode path produced a value.
type Mode int

const (
	ModeStrict Mode = iota
	ModeLenient
	ModeEmpty
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeLenient:
		return "lenient"
	default:
		return "empty"
	}
}

type teamNamesRecord struct {
	A string `json:"A"`
	B string `json:"B"`
}

type roundRecord struct {
	ID            int64  `json:"id"`
	Bidder        string `json:"bidder"`
	Contract      int    `json:"contract"`
	Suit          string `json:"suit"`
	ScoreMade     int    `json:"scoreMade"`
	OpponentScore int    `json:"opponentScore"`
	CheckedOff    bool   `json:"checkedOff"`
	Overridden    bool   `json:"overridden"`
	DeltaA        int    `json:"deltaA"`
	DeltaB        int    `json:"deltaB"`
	Description   string `json:"description"`
}

func EncodeTeamNames(names round.TeamNames) ([]byte, error) {
	return encode(teamNamesRecord{A: names.A, B: names.B})
}

func EncodeRounds(rounds []round.Round) ([]byte, error) {
	records := make([]roundRecord, 0, len(rounds))
	for _, r := range rounds {
		records = append(records, roundRecord{
			ID:            r.ID,
			Bidder:        string(r.Bidder),
			Contract:      r.Contract,
			Suit:          string(r.Suit),
			ScoreMade:     r.ScoreMade,
			OpponentScore: r.OpponentScore,
			CheckedOff:    r.CheckedOff,
			Overridden:    r.Overridden,
			DeltaA:        r.DeltaA,
			DeltaB:        r.DeltaB,
			Description:   r.Description,
		})
	}
	return encode(records)
}

func encode(v any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(v); err != nil {
		return nil, errors.Wrap(err, "encode session record")
	}
	out := bytes.TrimRight(buf.B, "\n")
	return append([]byte(nil), out...), nil
}

// DecodeTeamNames returns nil names with ModeEmpty when nothing usable is stored.
func DecodeTeamNames(payload []byte) (*round.TeamNames, Mode, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ModeEmpty, nil
	}

	var rec teamNamesRecord
	if err := decodeStrict(payload, &rec); err == nil && rec.A != "" && rec.B != "" {
		return &round.TeamNames{A: rec.A, B: rec.B}, ModeStrict, nil
	}

	names, err := lenientTeamNames(payload)
	if err != nil {
		return nil, ModeEmpty, err
	}
	return names, ModeLenient, nil
}

// DecodeRounds tries the current layout first and falls back to a lenient decode
// that maps legacy fields and drops unknown ones. Rounds that cannot be salvaged are skipped.
func DecodeRounds(payload []byte) ([]round.Round, Mode, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ModeEmpty, nil
	}

	var records []roundRecord
	if err := decodeStrict(payload, &records); err == nil {
		if rounds, ok := fromRecords(records); ok {
			return rounds, ModeStrict, nil
		}
	}

	rounds, err := lenientRounds(payload)
	if err != nil {
		return nil, ModeEmpty, err
	}
	return rounds, ModeLenient, nil
}

func decodeStrict(payload []byte, v any) error {
	dec := sonic.ConfigDefault.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "strict decode")
	}
	return nil
}

func fromRecords(records []roundRecord) ([]round.Round, bool) {
	rounds := make([]round.Round, 0, len(records))
	for _, rec := range records {
		side := round.Side(rec.Bidder)
		if !side.Valid() || rec.ID == 0 || rec.Contract == 0 {
			return nil, false
		}
		rounds = append(rounds, round.Round{
			ID: rec.ID,
			Input: round.Input{
				Bidder:        side,
				Contract:      rec.Contract,
				Suit:          round.Suit(rec.Suit),
				ScoreMade:     rec.ScoreMade,
				OpponentScore: rec.OpponentScore,
				CheckedOff:    rec.CheckedOff,
				Overridden:    rec.Overridden,
			},
			DeltaA:      rec.DeltaA,
			DeltaB:      rec.DeltaB,
			Description: rec.Description,
		})
	}
	return rounds, true
}
