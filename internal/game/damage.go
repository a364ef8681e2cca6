package game

// Shield is one absorption instance on a champion's shield list.
// Shields absorb in list order; the list is ordered oldest-first so
// the earliest-applied shield breaks first, matching "list order"
// from the spec's damage model.
type Shield struct {
	Amount            float64
	RemainingDuration float64
	SourceID          string
	ShieldType        DamageType // which damage category this shield blocks; DamageTrue blocks all
}

// ResolveDamage applies armor/magic-resist reduction, then shield
// absorption in list order. It does not touch health: it returns the
// damage left over after shields, which the caller then applies to
// health (e.g. via ApplyRawDamage).
func ResolveDamage(amount float64, damageType DamageType, armor, magicResist float64, shields *[]Shield) (appliedToHealth float64) {
	if amount <= 0 {
		return 0
	}

	reduced := amount
	switch damageType {
	case DamagePhysical:
		reduced = amount * 100 / (100 + armor)
	case DamageMagical:
		reduced = amount * 100 / (100 + magicResist)
	case DamageTrue:
		reduced = amount
	}

	remaining := reduced
	kept := (*shields)[:0]
	for _, s := range *shields {
		if remaining <= 0 {
			kept = append(kept, s)
			continue
		}
		if s.ShieldType != DamageTrue && s.ShieldType != damageType {
			kept = append(kept, s)
			continue
		}
		if s.Amount >= remaining {
			s.Amount -= remaining
			remaining = 0
			kept = append(kept, s)
			continue
		}
		remaining -= s.Amount
		s.Amount = 0
		// fully consumed shield is dropped, not appended
	}
	*shields = kept

	return remaining
}
