// Package inventory derives inventory views from the current position set.
// It never reads movements: position balances are trusted as maintained by
// the ledger.
package inventory

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/ledger"
)

// Display placeholders.
const (
	MergedCompany   = "—"
	UnknownCompany  = "Неизвестный"
	UnknownMaterial = "Неизвестная"
)

// DefaultLocale is used for name ordering when Options.Locale is unset.
var DefaultLocale = language.Russian

// Options control aggregation.
type Options struct {
	// GroupByCompany keeps one row per position; otherwise rows are summed
	// across companies by (material, size, ownership).
	GroupByCompany bool

	// Ownership keeps only positions of that kind. Nil keeps all.
	Ownership *ledger.Ownership

	Locale language.Tag
}

// Row is one line of the inventory view.
type Row struct {
	// PositionID is set only when the row is a single position.
	PositionID *id.ID `json:"positionId,omitempty"`
	// CompanyID is nil for rows merged across companies.
	CompanyID  *id.ID           `json:"companyId,omitempty"`
	Company    string           `json:"company"`
	MaterialID id.ID            `json:"materialId"`
	Material   string           `json:"material"`
	Size       string           `json:"size"`
	Ownership  ledger.Ownership `json:"ownership"`
	Balance    types.Weight     `json:"balance"`
}

type mergeKey struct {
	material  string
	size      string
	ownership ledger.Ownership
}

// Aggregate builds inventory rows from positions.
// The ownership filter runs before merging so owned and custodial stock never mix.
func Aggregate(positions []ledger.PositionView, opts Options) []Row {
	rows := make([]Row, 0, len(positions))
	merged := make(map[mergeKey]int)

	for i := range positions {
		p := &positions[i]
		if opts.Ownership != nil && p.Ownership != *opts.Ownership {
			continue
		}

		material := nameOr(p.MaterialName, UnknownMaterial)

		if opts.GroupByCompany {
			positionID, companyID := p.ID, p.CompanyID
			rows = append(rows, Row{
				PositionID: &positionID,
				CompanyID:  &companyID,
				Company:    nameOr(p.CompanyName, UnknownCompany),
				MaterialID: p.MaterialID,
				Material:   material,
				Size:       p.Size,
				Ownership:  p.Ownership,
				Balance:    p.Balance,
			})
			continue
		}

		key := mergeKey{material: material, size: p.Size, ownership: p.Ownership}
		if idx, ok := merged[key]; ok {
			rows[idx].Balance += p.Balance
			continue
		}
		merged[key] = len(rows)
		rows = append(rows, Row{
			Company:    MergedCompany,
			MaterialID: p.MaterialID,
			Material:   material,
			Size:       p.Size,
			Ownership:  p.Ownership,
			Balance:    p.Balance,
		})
	}

	sortRows(rows, opts)
	return rows
}

// TotalBalance sums balances of rows.
func TotalBalance(rows []Row) types.Weight {
	var total types.Weight
	for _, r := range rows {
		total += r.Balance
	}
	return total
}

func sortRows(rows []Row, opts Options) {
	tag := opts.Locale
	if tag == language.Und {
		tag = DefaultLocale
	}
	col := collate.New(tag)

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if opts.GroupByCompany {
			if c := col.CompareString(a.Company, b.Company); c != 0 {
				return c < 0
			}
		}
		if c := col.CompareString(a.Material, b.Material); c != 0 {
			return c < 0
		}
		return col.CompareString(a.Size, b.Size) < 0
	})
}

func nameOr(name *string, fallback string) string {
	if name == nil || *name == "" {
		return fallback
	}
	return *name
}
