package customizer

import "fmt"

// SelectionFromChoices rebuilds a Selection from the structured choices of a
// line item, so a submitted cart line can be re-priced on the server
func SelectionFromChoices(c *Choices) *Selection {
	sel := NewSelection()
	if c == nil {
		return sel
	}
	if c.Base != nil {
		sel.BaseID = c.Base.ID
	}
	for _, v := range c.Viandes {
		sel.ViandeIDs = append(sel.ViandeIDs, v.ID)
	}
	for _, g := range c.Garnitures {
		if g.Level != LevelNon {
			sel.Garniture[g.ID] = g.Level
		}
	}
	for _, s := range c.Sauces {
		sel.SauceIDs = append(sel.SauceIDs, s.ID)
	}
	if side := c.Accompagnement; side != nil {
		choice := &SideChoice{OptionID: side.ID, Portion: side.Portion, Size: side.Size}
		if side.SubSauce != nil {
			choice.SubSauceID = side.SubSauce.ID
		}
		sel.Accompagnement = choice
	}
	for _, s := range c.Supplements {
		if s.Quantity > 0 {
			sel.Supplements[s.ID] += s.Quantity
		}
	}
	if c.Boisson != nil {
		sel.BoissonID = c.Boisson.ID
	}
	if c.Dessert != nil {
		sel.DessertID = c.Dessert.ID
	}
	return sel
}

// Check verifies that a selection built outside a Session respects the
// configuration: known option ids, caps and required steps of the product type.
func Check(cfg *Configuration, item Item, sel *Selection) []Issue {
	var issues []Issue
	unknown := func(kind StepKind, id string) {
		issues = append(issues, Issue{Step: kind, Option: id, Message: "unknown option"})
	}

	if sel.BaseID != "" {
		if _, ok := cfg.Option(StepBase, sel.BaseID); !ok {
			unknown(StepBase, sel.BaseID)
		}
	}
	seen := make(map[string]bool)
	for _, id := range sel.ViandeIDs {
		if _, ok := cfg.Option(StepViande, id); !ok {
			unknown(StepViande, id)
		}
		if seen[id] {
			issues = append(issues, Issue{Step: StepViande, Option: id, Message: "meat chosen twice"})
		}
		seen[id] = true
	}
	if limit := sel.MeatCap(cfg); len(sel.ViandeIDs) > limit {
		issues = append(issues, Issue{Step: StepViande, Message: fmt.Sprintf("%d meats exceed the cap of %d", len(sel.ViandeIDs), limit)})
	}

	for id, level := range sel.Garniture {
		if _, ok := cfg.Option(StepGarniture, id); !ok {
			unknown(StepGarniture, id)
		}
		if level != LevelNon && level != LevelOui && level != LevelX2 {
			issues = append(issues, Issue{Step: StepGarniture, Option: id, Message: fmt.Sprintf("unknown level %q", level)})
		}
	}

	seen = make(map[string]bool)
	for _, id := range sel.SauceIDs {
		if _, ok := cfg.Option(StepSauces, id); !ok {
			unknown(StepSauces, id)
		}
		if seen[id] {
			issues = append(issues, Issue{Step: StepSauces, Option: id, Message: "sauce chosen twice"})
		}
		seen[id] = true
	}
	if limit := SauceCap(cfg); len(sel.SauceIDs) > limit {
		issues = append(issues, Issue{Step: StepSauces, Message: fmt.Sprintf("%d sauces exceed the cap of %d", len(sel.SauceIDs), limit)})
	}

	if side := sel.Accompagnement; side != nil {
		issues = append(issues, checkSide(cfg, side)...)
	}

	for id, qty := range sel.Supplements {
		opt, ok := cfg.Option(StepSupplements, id)
		if !ok {
			unknown(StepSupplements, id)
			continue
		}
		if qty < 0 || qty > opt.SupplementCap() {
			issues = append(issues, Issue{Step: StepSupplements, Option: id, Message: fmt.Sprintf("quantity %d outside [0, %d]", qty, opt.SupplementCap())})
		}
	}

	if sel.BoissonID != "" {
		if _, ok := cfg.Option(StepBoisson, sel.BoissonID); !ok {
			unknown(StepBoisson, sel.BoissonID)
		}
	}
	if sel.DessertID != "" {
		if _, ok := cfg.Option(StepDessert, sel.DessertID); !ok {
			unknown(StepDessert, sel.DessertID)
		}
	}

	for _, step := range EffectiveSteps(cfg, item.Type) {
		if step.Required && !sel.Has(step.ID) {
			issues = append(issues, Issue{Step: step.ID, Message: "required step has no selection"})
		}
	}
	return issues
}

func checkSide(cfg *Configuration, side *SideChoice) []Issue {
	opt, ok := cfg.Option(StepAccompagnement, side.OptionID)
	if !ok {
		return []Issue{{Step: StepAccompagnement, Option: side.OptionID, Message: "unknown option"}}
	}
	var issues []Issue
	if side.Portion != "" {
		if _, ok := opt.Portion(side.Portion); !ok {
			issues = append(issues, Issue{Step: StepAccompagnement, Option: opt.ID, Message: fmt.Sprintf("unknown portion %q", side.Portion)})
		}
	}
	if side.Size != "" && !opt.HasSizes {
		issues = append(issues, Issue{Step: StepAccompagnement, Option: opt.ID, Message: "size given for a side without sizes"})
	}
	if side.SubSauceID != "" {
		if !opt.HasSubSauce {
			issues = append(issues, Issue{Step: StepAccompagnement, Option: opt.ID, Message: "sub-sauce given for a side without one"})
		} else if _, ok := cfg.Option(StepSauces, side.SubSauceID); !ok {
			issues = append(issues, Issue{Step: StepAccompagnement, Option: side.SubSauceID, Message: "unknown sub-sauce"})
		}
	}
	return issues
}
