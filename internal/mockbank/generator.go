package mockbank

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
)

// ErrInvalidRange is returned when from_date is after to_date.
var ErrInvalidRange = errors.New("invalid date range: from_date is after to_date")

// idVersion prefixes every derived external id. Bump only alongside a
// migration of already-persisted ids; existing seeds must keep resolving
// to the same ids forever.
const idVersion = "btx1"

type valueEntry struct {
	category    string
	description string
	income      bool
	minCents    int64
	maxCents    int64
}

// Fixed table the generator draws from. Indexed by a digest of
// (seed, index), never by a random source, so output is reproducible.
var valueTable = []valueEntry{
	{"Salary", "ACME PAYROLL LTD", true, 180000, 420000},
	{"Shopping", "POS PURCHASE AMAZON MARKETPLACE", false, 599, 24999},
	{"Groceries", "CARD PAYMENT TESCO STORES", false, 450, 15800},
	{"Dining", "CARD PAYMENT DELIVEROO", false, 899, 6500},
	{"Transport", "TFL TRAVEL CHARGE", false, 280, 1200},
	{"Utilities", "DIRECT DEBIT OCTOPUS ENERGY", false, 3200, 16500},
	{"Entertainment", "SPOTIFY SUBSCRIPTION", false, 999, 1999},
	{"Refund", "REFUND AMAZON MARKETPLACE", true, 599, 9999},
}

// GeneratorCurrency is the currency every generated record carries.
const GeneratorCurrency = "EUR"

// SeedForAccount derives the default generator seed for an account, used
// when a caller does not pass one explicitly. Stable per account id.
func SeedForAccount(accountID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(accountID))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func digest(seed int64, index int) [sha256.Size]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", idVersion, seed, index)))
}

// DeriveExternalID maps (seed, index) to a stable external identifier.
// All ids for one seed share the same 8-hex prefix; the 12-hex tail is a
// digest of the pair, so distinct pairs do not collide in practice.
func DeriveExternalID(seed int64, index int) string {
	d := digest(seed, index)
	return fmt.Sprintf("%s-%s-%s", idVersion, SeedPrefix(seed), hex.EncodeToString(d[:6]))
}

// SeedPrefix returns the 8-hex prefix shared by every id derived from seed.
func SeedPrefix(seed int64) string {
	d := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", idVersion, seed)))
	return hex.EncodeToString(d[:4])
}

// Generate produces a deterministic sequence of pseudo-transactions for
// accountID within [from, to] inclusive. count <= 0 means one transaction
// per day in the range. Identical arguments always yield an identical
// sequence, independent of process restarts.
func Generate(accountID string, seed int64, from, to time.Time, count int) ([]models.TransactionRecord, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if count <= 0 {
		count = days
	}

	records := make([]models.TransactionRecord, 0, count)
	for i := 0; i < count; i++ {
		d := digest(seed, i)

		offset := int(binary.BigEndian.Uint32(d[0:4])) % days
		entry := valueTable[int(d[4])%len(valueTable)]

		span := entry.maxCents - entry.minCents + 1
		cents := entry.minCents + int64(binary.BigEndian.Uint64(d[5:13])%uint64(span))
		if !entry.income {
			cents = -cents
		}
		amount := decimal.New(cents, -2)

		date := from.AddDate(0, 0, offset)
		if date.After(to) {
			date = to
		}

		records = append(records, models.TransactionRecord{
			AccountID:   accountID,
			ExternalID:  DeriveExternalID(seed, i),
			Date:        date,
			Amount:      amount,
			Currency:    GeneratorCurrency,
			Description: entry.description,
			Category:    entry.category,
			Type:        models.TypeForAmount(amount),
		})
	}

	return records, nil
}
