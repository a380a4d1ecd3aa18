// Package statistics derives and aggregates player statistics.
package statistics

import "github.com/mcoot/arkham-companion/internal/model"

// Aggregate sums the counters of every player and counts sessions played and hosted
func Aggregate(players []*model.Player) model.UserStatistics {
	var out model.UserStatistics
	for _, p := range players {
		s := p.Statistics
		out.MoneyAcquired += s.MoneyAcquired
		out.MoneyLost += s.MoneyLost
		out.CluesAcquired += s.CluesAcquired
		out.CluesLost += s.CluesLost
		out.EnduranceAcquired += s.EnduranceAcquired
		out.EnduranceLost += s.EnduranceLost
		out.SanityAcquired += s.SanityAcquired
		out.SanityLost += s.SanityLost
		out.CardsAcquired += s.CardsAcquired
		out.CardsLost += s.CardsLost
		out.PhasesPlayed += s.PhasesPlayed
		out.CharactersPlayed += s.CharactersPlayed

		out.GameSessionPlayed++
		if p.Role == model.PlayerRoleHost {
			out.GameSessionCreated++
		}
	}
	return out
}

// Derive returns the player's statistics with acquired/lost counters moved by
// the difference between the current state and the proposed update.
// It must be called before the update is applied to the player.
func Derive(player *model.Player, update model.PlayerUpdate) model.PlayerStatistics {
	stats := player.Statistics

	if update.Status != nil {
		apply(player.Status.Sanity, update.Status.Sanity, &stats.SanityAcquired, &stats.SanityLost)
		apply(player.Status.Endurance, update.Status.Endurance, &stats.EnduranceAcquired, &stats.EnduranceLost)
	}
	if update.Equipment != nil {
		apply(player.Equipment.Money, update.Equipment.Money, &stats.MoneyAcquired, &stats.MoneyLost)
		apply(player.Equipment.Clues, update.Equipment.Clues, &stats.CluesAcquired, &stats.CluesLost)
	}
	if update.Statistics != nil {
		if v := update.Statistics.PhasesPlayed; v != nil {
			stats.PhasesPlayed = *v
		}
		if v := update.Statistics.CharactersPlayed; v != nil {
			stats.CharactersPlayed = *v
		}
	}

	return stats
}

func apply(current int, proposed *int, acquired, lost *int) {
	if proposed == nil {
		return
	}
	delta := *proposed - current
	switch {
	case delta > 0:
		*acquired += delta
	case delta < 0:
		*lost += -delta
	}
}
