package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/ballbyball/internal/app"
	"github.com/okian/ballbyball/internal/domain/model"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type createPlayerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type createTeamRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	PlayerIDs []string `json:"playerIds" validate:"omitempty,dive,required"`
}

type updateTeamRequest struct {
	Name      *string   `json:"name" validate:"omitempty,min=1,max=100"`
	PlayerIDs *[]string `json:"playerIds" validate:"omitempty,dive,required"`
}

func (r updateTeamRequest) patch() service.TeamPatch {
	return service.TeamPatch{Name: r.Name, PlayerIDs: r.PlayerIDs}
}

type curPlayerRequest struct {
	ID   string `json:"id" validate:"required"`
	Type string `json:"type" validate:"required,oneof=batsman bowler"`
}

func curPlayers(in []curPlayerRequest) []model.CurPlayer {
	out := make([]model.CurPlayer, len(in))
	for i, p := range in {
		out[i] = model.CurPlayer{ID: p.ID, Type: p.Type}
	}
	return out
}

type createMatchRequest struct {
	Name              string             `json:"name" validate:"required,max=100"`
	TeamIDs           [2]string          `json:"teamIds" validate:"dive,required"`
	CurTeam           int                `json:"curTeam" validate:"oneof=0 1"`
	Overs             int                `json:"overs" validate:"gte=0"`
	CurPlayers        []curPlayerRequest `json:"curPlayers" validate:"omitempty,max=3,dive"`
	OnStrike          string             `json:"onStrike"`
	AllowSinglePlayer bool               `json:"allowSinglePlayer"`
}

func (r createMatchRequest) input() service.MatchInput {
	return service.MatchInput{
		Name:              r.Name,
		TeamIDs:           r.TeamIDs,
		CurTeam:           r.CurTeam,
		Overs:             r.Overs,
		CurPlayers:        curPlayers(r.CurPlayers),
		OnStrike:          r.OnStrike,
		AllowSinglePlayer: r.AllowSinglePlayer,
	}
}

type updateMatchRequest struct {
	Name       *string             `json:"name" validate:"omitempty,min=1,max=100"`
	Overs      *int                `json:"overs" validate:"omitempty,gte=1"`
	CurTeam    *int                `json:"curTeam" validate:"omitempty,oneof=0 1"`
	CurPlayers *[]curPlayerRequest `json:"curPlayers" validate:"omitempty,max=3,dive"`
	OnStrike   *string             `json:"onStrike"`
	HasEnded   *bool               `json:"hasEnded"`
}

func (r updateMatchRequest) patch() service.MatchPatch {
	p := service.MatchPatch{
		Name:     r.Name,
		Overs:    r.Overs,
		CurTeam:  r.CurTeam,
		OnStrike: r.OnStrike,
		HasEnded: r.HasEnded,
	}
	if r.CurPlayers != nil {
		players := curPlayers(*r.CurPlayers)
		p.CurPlayers = &players
	}
	return p
}

// eventRequest is one submitted ball. Batsman, bowler and dismissed
// batsman are optional.
type eventRequest struct {
	ID          string `json:"id" validate:"omitempty,max=128"`
	Type        string `json:"type" validate:"required,max=3"`
	BatsmanID   string `json:"batsmanId"`
	BowlerID    string `json:"bowlerId"`
	DismissedID string `json:"dismissedId"`
}

func (e eventRequest) input() service.EventInput {
	return service.EventInput{
		ID:          e.ID,
		Type:        e.Type,
		BatsmanID:   e.BatsmanID,
		BowlerID:    e.BowlerID,
		DismissedID: e.DismissedID,
	}
}
