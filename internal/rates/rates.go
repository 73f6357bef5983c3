package rates

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/model"
)

// Table — статичная тарифная сетка: (категория терминала, tier участника) → цена в час.
type Table struct {
	prices map[model.TerminalCategory]map[model.MemberTier]float64
}

// Default — тарифы, зашитые в бинарь. Используются, когда rates.yaml не задан.
func Default() *Table {
	return &Table{prices: map[model.TerminalCategory]map[model.MemberTier]float64{
		model.CategoryPC: {
			model.TierGuest:   50,
			model.TierStudent: 30,
			model.TierRegular: 40,
			model.TierVIP:     35,
		},
		model.CategoryXbox: {
			model.TierGuest:   80,
			model.TierStudent: 60,
			model.TierRegular: 70,
			model.TierVIP:     60,
		},
		model.CategoryPS: {
			model.TierGuest:   80,
			model.TierStudent: 60,
			model.TierRegular: 70,
			model.TierVIP:     60,
		},
	}}
}

// Load читает тарифы из yaml-файла. Пустой путь или отсутствующий файл — дефолты.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errs.Configf("read rates config %s: %v", path, err)
	}

	var raw map[string]map[string]float64
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errs.Configf("parse rates config %s: %v", path, err)
	}

	table := &Table{prices: make(map[model.TerminalCategory]map[model.MemberTier]float64, len(raw))}
	for category, tiers := range raw {
		cat := model.TerminalCategory(strings.ToUpper(category))
		table.prices[cat] = make(map[model.MemberTier]float64, len(tiers))
		for tier, price := range tiers {
			if price <= 0 {
				return nil, errs.Configf("rate for %s/%s must be positive, got %v", category, tier, price)
			}
			table.prices[cat][model.MemberTier(strings.ToLower(tier))] = price
		}
	}
	return table, nil
}

// Lookup возвращает часовой тариф. Неизвестная категория — ошибка конфигурации,
// неизвестный tier внутри известной категории падает на гостевой тариф.
func (t *Table) Lookup(category model.TerminalCategory, tier model.MemberTier) (float64, error) {
	tiers, ok := t.prices[category]
	if !ok {
		return 0, errs.Configf("no rates configured for category %q", category)
	}
	if rate, ok := tiers[tier]; ok {
		return rate, nil
	}
	rate, ok := tiers[model.TierGuest]
	if !ok {
		return 0, errs.Configf("no guest fallback rate for category %q", category)
	}
	return rate, nil
}

// Categories — известные таблице категории, для диагностики.
func (t *Table) Categories() []string {
	out := make([]string, 0, len(t.prices))
	for cat := range t.prices {
		out = append(out, string(cat))
	}
	return out
}
