package leaderboard

import ws "github.com/blazearena/trivia-arena/pkg/http/ws"

// UpdatePayload is the Pub/Sub and WebSocket payload for board changes.
type UpdatePayload = ws.LeaderboardUpdatePayload

func toWireEntries(entries []Entry) []ws.LeaderboardEntry {
	result := make([]ws.LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = ws.LeaderboardEntry{
			Rank:      i + 1,
			ID:        e.ID,
			Name:      e.Name,
			Score:     e.Score,
			MaxStreak: e.MaxStreak,
			Accuracy:  e.Accuracy,
			Date:      e.Date,
		}
	}
	return result
}
