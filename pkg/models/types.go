// Package models holds the entity shapes returned by the backend. Fields the
// client does not use are left out; unknown fields are ignored on decode.
package models

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Verified    bool   `json:"verified,omitempty"`
}

type Group struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	OwnerID       string `json:"owner_id,omitempty"`
	InviteCode    string `json:"invite_code,omitempty"`
	LeaderboardID string `json:"leaderboard_id,omitempty"`
	MemberCount   int    `json:"member_count,omitempty"`
	PickLimit     int    `json:"pick_limit,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type Member struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"` // "owner"|"admin"|"member"
	JoinedAt string `json:"joined_at,omitempty"`
}

type Leaderboard struct {
	ID        string             `json:"id"`
	GroupID   string             `json:"group_id,omitempty"`
	Name      string             `json:"name"`
	StartDate string             `json:"start_date,omitempty"`
	EndDate   string             `json:"end_date,omitempty"`
	Entries   []LeaderboardEntry `json:"entries,omitempty"`
}

type LeaderboardEntry struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Rank     int     `json:"rank"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins,omitempty"`
	Losses   int     `json:"losses,omitempty"`
	Pushes   int     `json:"pushes,omitempty"`
}

type Slip struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name"`
	Status      string `json:"status,omitempty"` // "open"|"finalized"|"graded"
	Finalized   bool   `json:"finalized,omitempty"`
	PickLimit   int    `json:"pick_limit,omitempty"`
	Picks       []Pick `json:"picks,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	FinalizedAt string `json:"finalized_at,omitempty"`
}

type Pick struct {
	ID         string `json:"id"`
	SlipID     string `json:"slip_id"`
	GameID     string `json:"game_id"`
	League     string `json:"league,omitempty"` // "nfl"|"nba"
	Market     string `json:"market,omitempty"` // "moneyline"|"spread"|"total"
	Selection  string `json:"selection"`
	Odds       string `json:"odds"`
	Line       string `json:"line,omitempty"`
	Result     string `json:"result,omitempty"`
	EventStart string `json:"event_start,omitempty"`
}

type FeedItem struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Kind      string `json:"kind,omitempty"` // "post"|"slip"|"result"
	Content   string `json:"content"`
	SlipID    string `json:"slip_id,omitempty"`
	Likes     int    `json:"likes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Game struct {
	ID        string `json:"id"`
	League    string `json:"league,omitempty"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	StartTime string `json:"start_time"`
	Week      int    `json:"week,omitempty"`
	Odds      Odds   `json:"odds"`
}

type Odds struct {
	HomeMoneyline string `json:"home_moneyline,omitempty"`
	AwayMoneyline string `json:"away_moneyline,omitempty"`
	Spread        string `json:"spread,omitempty"`
	SpreadOdds    string `json:"spread_odds,omitempty"`
	Total         string `json:"total,omitempty"`
	OverOdds      string `json:"over_odds,omitempty"`
	UnderOdds     string `json:"under_odds,omitempty"`
}

type Week struct {
	Number int    `json:"number"`
	Label  string `json:"label,omitempty"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type Progress struct {
	UserID      string  `json:"user_id"`
	Level       int     `json:"level"`
	Points      float64 `json:"points"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pushes      int     `json:"pushes"`
	Streak      int     `json:"streak"`
	NextLevelAt float64 `json:"next_level_at,omitempty"`
}

type HistoryEntry struct {
	SlipID   string  `json:"slip_id"`
	SlipName string  `json:"slip_name,omitempty"`
	Points   float64 `json:"points"`
	Result   string  `json:"result"`
	GradedAt string  `json:"graded_at,omitempty"`
}
