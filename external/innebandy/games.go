package innebandy

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
)

type gameRecord struct {
	GameID            int64      `json:"GameID"`
	GameStatusID      int64      `json:"GameStatusID"`
	LeagueID          int64      `json:"LeagueID"`
	LeagueName        string     `json:"LeagueName"`
	GameRound         int64      `json:"GameRound"`
	LeagueDisplayName string     `json:"LeagueDisplayName"`
	HomeTeamID        int64      `json:"HomeTeamID"`
	AwayTeamID        int64      `json:"AwayTeamID"`
	HomeTeamClubName  string     `json:"HomeTeamClubName"`
	AwayTeamClubName  string     `json:"AwayTeamClubName"`
	HomeTeamScore     flexString `json:"HomeTeamScore"`
	AwayTeamScore     flexString `json:"AwayTeamScore"`
	GameTime          string     `json:"GameTime"`
	ArenaName         string     `json:"ArenaName"`
}

// flexString accepts a JSON string, number or null. Scores arrive as any of
// the three depending on game state.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := sonic.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	default:
		*s = flexString(data)
	}
	return nil
}

func (r gameRecord) toDomain() game.Game {
	return game.Game{
		GameID:            r.GameID,
		GameStatusID:      r.GameStatusID,
		LeagueID:          r.LeagueID,
		LeagueName:        r.LeagueName,
		GameRound:         r.GameRound,
		LeagueDisplayName: r.LeagueDisplayName,
		HomeTeamID:        r.HomeTeamID,
		AwayTeamID:        r.AwayTeamID,
		HomeTeamClubName:  r.HomeTeamClubName,
		AwayTeamClubName:  r.AwayTeamClubName,
		HomeTeamScore:     string(r.HomeTeamScore),
		AwayTeamScore:     string(r.AwayTeamScore),
		GameTime:          r.GameTime,
		ArenaName:         r.ArenaName,
	}
}

// FetchGamesPage returns the games played after lastGameID. A body that is not
// a JSON array is treated as an empty page.
func (c *Client) FetchGamesPage(ctx context.Context, leagueID, lastGameID int64) ([]game.Game, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}

	values := url.Values{}
	values.Set("leagueid", strconv.FormatInt(leagueID, 10))
	values.Set("lastgameid", strconv.FormatInt(lastGameID, 10))
	fullURL := c.gamesURL + "?" + values.Encode()

	header := c.baseHeader()
	header.Set("Authorization", c.token)
	header.Set("Accept", "application/json")

	raw, err := c.get(ctx, fullURL, header)
	if err != nil {
		return nil, fmt.Errorf("fetch games league_id=%d last_game_id=%d: %w", leagueID, lastGameID, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.WarnContext(ctx, "games response is not a list, treating as empty page",
			"league_id", leagueID,
			"last_game_id", lastGameID,
			"body", abbreviateBody(raw),
		)
		return []game.Game{}, nil
	}

	var records []gameRecord
	if err := sonic.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: decode games page: %v", errTransient, err)
	}
	c.archivePage(ctx, rawdata.EntityGamesPage, fmt.Sprintf("league=%d&lastgameid=%d", leagueID, lastGameID), raw)

	out := make([]game.Game, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
