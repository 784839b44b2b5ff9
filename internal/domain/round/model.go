package round

// Side identifies one of the two teams at the table.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

type Suit string

const (
	SuitSpades   Suit = "♠️"
	SuitHearts   Suit = "♥️"
	SuitDiamonds Suit = "♦️"
	SuitClubs    Suit = "♣️"
	SuitNoTrump  Suit = "SA"
	SuitAllTrump Suit = "TA"
)

var AllSuits = map[Suit]struct{}{
	SuitSpades:   {},
	SuitHearts:   {},
	SuitDiamonds: {},
	SuitClubs:    {},
	SuitNoTrump:  {},
	SuitAllTrump: {},
}

// Red reports whether the suit is printed in red on the cards.
func (s Suit) Red() bool {
	return s == SuitHearts || s == SuitDiamonds
}

const (
	ContractCapot    = 250
	ContractGenerale = 500
)

// Contracts lists every biddable contract value in ascending order.
var Contracts = []int{82, 90, 100, 110, 120, 130, 140, 150, 160, ContractCapot, ContractGenerale}

// IsAllTricks reports whether the contract requires taking every trick,
// in which case the realised score is all or nothing.
func IsAllTricks(contract int) bool {
	return contract == ContractCapot || contract == ContractGenerale
}

// TeamNames holds the display names of both sides for a session.
type TeamNames struct {
	A string `json:"A"`
	B string `json:"B"`
}

func (n TeamNames) Of(side Side) string {
	if side == SideB {
		return n.B
	}
	return n.A
}

// Input is the raw data entered for one played round.
type Input struct {
	Bidder        Side `json:"bidder" validate:"required,oneof=A B"`
	Contract      int  `json:"contract" validate:"required,oneof=82 90 100 110 120 130 140 150 160 250 500"`
	Suit          Suit `json:"suit" validate:"required,oneof=♠️ ♥️ ♦️ ♣️ SA TA"`
	ScoreMade     int  `json:"scoreMade" validate:"gte=0"`
	OpponentScore int  `json:"opponentScore" validate:"gte=0"`
	CheckedOff    bool `json:"checkedOff"`
	Overridden    bool `json:"overridden" validate:"excluded_if=CheckedOff true"`
}

// Round is a scored entry of the ledger.
type Round struct {
	ID int64 `json:"id"`
	Input
	DeltaA      int    `json:"deltaA"`
	DeltaB      int    `json:"deltaB"`
	Description string `json:"description"`
}

func (r Round) Delta(side Side) int {
	if side == SideB {
		return r.DeltaB
	}
	return r.DeltaA
}

// Totals is the cumulative score of both sides.
type Totals struct {
	A int `json:"A"`
	B int `json:"B"`
}

func (t Totals) Of(side Side) int {
	if side == SideB {
		return t.B
	}
	return t.A
}
