package riot

// Summoner is the summoner-v4 record
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

// Mastery is one champion-mastery-v4 entry
type Mastery struct {
	ChampionID     int `json:"championId"`
	ChampionLevel  int `json:"championLevel"`
	ChampionPoints int `json:"championPoints"`
}

// LeagueEntry is one league-v4 position
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// MatchRef is one match-v4 matchlist entry
type MatchRef struct {
	GameID    int64 `json:"gameId"`
	Champion  int   `json:"champion"`
	Queue     int   `json:"queue"`
	Timestamp int64 `json:"timestamp"`
}

type matchlistResponse struct {
	Matches    []MatchRef `json:"matches"`
	StartIndex int        `json:"startIndex"`
	EndIndex   int        `json:"endIndex"`
	TotalGames int        `json:"totalGames"`
}

// Ranked queue ids for the matchlist endpoint
var rankedQueueIDs = []int{420, 440}
