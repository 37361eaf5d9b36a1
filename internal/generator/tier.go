package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

var ErrInfeasibleTier = errors.New("tier band cannot cover the fixed taxes")

// Tier is one independent emission timer. Totals are in whole rupees.
type Tier struct {
	Name     string        `yaml:"name"`
	Period   time.Duration `yaml:"period"`
	MinTotal int64         `yaml:"min_total"`
	MaxTotal int64         `yaml:"max_total"`
}

func DefaultTiers() []Tier {
	return []Tier{
		{Name: "retail", Period: 25 * time.Second, MinTotal: 10_000, MaxTotal: 100_000},
		{Name: "trade", Period: 40 * time.Second, MinTotal: 100_000, MaxTotal: 1_000_000},
		{Name: "wholesale", Period: 60 * time.Second, MinTotal: 1_000_000, MaxTotal: 3_000_000},
		{Name: "bulk", Period: 90 * time.Second, MinTotal: 3_000_000, MaxTotal: 6_000_000},
		{Name: "export", Period: 120 * time.Second, MinTotal: 6_000_000, MaxTotal: 10_000_000},
		{Name: "vip", Period: 150 * time.Second, MinTotal: 10_000_000, MaxTotal: 20_000_000},
	}
}

func (t Tier) Validate() error {
	switch {
	case t.Name == "":
		return errors.New("tier name is required")
	case t.Period <= 0:
		return fmt.Errorf("tier %s: period must be positive", t.Name)
	case t.MinTotal < 0 || t.MinTotal > t.MaxTotal:
		return fmt.Errorf("tier %s: invalid band %d-%d", t.Name, t.MinTotal, t.MaxTotal)
	}

	if _, _, err := t.baseRange(); err != nil {
		return fmt.Errorf("tier %s: %w", t.Name, err)
	}

	return nil
}

type tierFile struct {
	Tiers []Tier `yaml:"tiers"`
}

// LoadTiers reads tiers from a YAML file of the form:
//
//	tiers:
//	  - name: retail
//	    period: 25s
//	    min_total: 10000
//	    max_total: 100000
func LoadTiers(path string) ([]Tier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tiers file: %w", err)
	}

	var f tierFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing tiers file: %w", err)
	}

	if len(f.Tiers) == 0 {
		return nil, errors.New("tiers file defines no tiers")
	}

	var errs []error
	for _, t := range f.Tiers {
		errs = append(errs, t.Validate())
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return f.Tiers, nil
}

// baseRange returns the product price range, in paise, for which
// price + GST + fixed taxes stays inside the tier band.
func (t Tier) baseRange() (lo, hi int64, err error) {
	fixed := transaction.FixedTaxA + transaction.FixedTaxB
	minTotal := transaction.Rupees(t.MinTotal)
	maxTotal := transaction.Rupees(t.MaxTotal)

	if maxTotal < fixed {
		return 0, 0, ErrInfeasibleTier
	}

	if minTotal > fixed {
		lo = ((minTotal-fixed)*100 + 117) / 118
	}

	hi = (maxTotal - fixed) * 100 / 118

	if lo > hi {
		return 0, 0, ErrInfeasibleTier
	}

	return lo, hi, nil
}

// BasePrice picks a product price, in paise, whose bill total falls in the band.
// Whole-rupee prices are preferred when the band allows one.
func (t Tier) BasePrice(rng *rand.Rand) (int64, error) {
	lo, hi, err := t.baseRange()
	if err != nil {
		return 0, err
	}

	loR, hiR := (lo+99)/100, hi/100
	if loR <= hiR {
		return (loR + rng.Int64N(hiR-loR+1)) * 100, nil
	}

	return lo + rng.Int64N(hi-lo+1), nil
}
