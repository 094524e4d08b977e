package world

// Company is the minimal company record the object subsystem touches:
// balance for cost settlement, value for the HQ relocation penalty,
// performance score for HQ growth, and the HQ location itself.
type Company struct {
	ID      Owner
	Name    string
	Balance Money
	Value   Money
	Score   int

	HasHQ bool
	HQ    Pt
}

func (w *World) Company(id Owner) *Company {
	if !id.IsCompany() {
		return nil
	}
	return w.companies[id]
}

func (w *World) AddCompany(name string) *Company {
	for id := Owner(0); id < MaxCompanies; id++ {
		if w.companies[id] != nil {
			continue
		}
		c := &Company{
			ID:      id,
			Name:    name,
			Balance: Money(w.tune.Economy.StartingBalance),
		}
		w.companies[id] = c
		return c
	}
	return nil
}

// UpdateCompanyRatingAndValue recomputes company value from its assets
// and returns the current performance score. The full performance model
// lives with the economy; here value tracks balance plus a premium per
// live object the company owns.
func (w *World) UpdateCompanyRatingAndValue(c *Company) int {
	c.Value = w.computeCompanyValue(c)
	return c.Score
}

func (w *World) computeCompanyValue(c *Company) Money {
	var owned int64
	for _, o := range w.objects.All() {
		t := w.grid.Cell(o.Location.Origin)
		if t.Type == TileObject && t.Owner == c.ID {
			owned++
		}
	}
	v := int64(c.Balance) + owned*1000
	if v < 1 {
		v = 1
	}
	return Money(v)
}

// settle applies a committed command cost to the acting company.
// Negative costs are income. Worldgen and ownerless actions settle
// against nobody.
func (w *World) settle(ctx CmdContext, cost Money) {
	if !ctx.Commit || cost == 0 {
		return
	}
	c := w.Company(ctx.Company)
	if c == nil {
		return
	}
	c.Balance -= cost
}

// InvalidateHQCargo drops in-flight cargo tied to a company's HQ. The
// cargo model only tracks per-station tallies, so this clears the
// HQ-sourced counters on every station the company serves.
func (w *World) InvalidateHQCargo(company Owner) {
	for _, st := range w.stations {
		if st.Owner == company {
			st.HQSourced = 0
		}
	}
}
