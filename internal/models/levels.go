package models

// LevelTier is one row of the static progression table. ExpRequired is the
// total accumulated experience needed to hold the level.
type LevelTier struct {
	Level       int    `json:"level"`
	ExpRequired int    `json:"exp_required"`
	BadgeName   string `json:"badge_name"`
	Color       string `json:"color"`
}

// LevelTable must stay strictly increasing in both level and required
// experience. The top row saturates: experience beyond 5500 stays level 10.
var LevelTable = []LevelTier{
	{Level: 0, ExpRequired: 0, BadgeName: "Newcomer", Color: "text-gray-400"},
	{Level: 1, ExpRequired: 100, BadgeName: "Awareness", Color: "text-amber-700"},
	{Level: 2, ExpRequired: 300, BadgeName: "Active", Color: "text-amber-600"},
	{Level: 3, ExpRequired: 600, BadgeName: "Committed", Color: "text-slate-400"},
	{Level: 4, ExpRequired: 1000, BadgeName: "Champion", Color: "text-slate-500"},
	{Level: 5, ExpRequired: 1500, BadgeName: "Leader", Color: "text-yellow-500"},
	{Level: 6, ExpRequired: 2100, BadgeName: "Ambassador", Color: "text-yellow-600"},
	{Level: 7, ExpRequired: 2800, BadgeName: "Hero", Color: "text-cyan-400"},
	{Level: 8, ExpRequired: 3600, BadgeName: "Legend", Color: "text-cyan-500"},
	{Level: 9, ExpRequired: 4500, BadgeName: "Elite", Color: "text-blue-500"},
	{Level: 10, ExpRequired: 5500, BadgeName: "Immortal", Color: "text-purple-600"},
}
