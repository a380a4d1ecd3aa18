package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.User:
		o.printUser(v)
	case response.Login:
		o.printUser(v.User)
		fmt.Fprintf(o.w, "Token: %s\n", v.Token)
	case response.GameSession:
		o.printSession(v)
	case []response.GameSession:
		for i, s := range v {
			if i > 0 {
				fmt.Fprintln(o.w)
			}
			o.printSession(s)
		}
	case response.CreatedGameSession:
		o.printSession(v.GameSession)
		fmt.Fprintf(o.w, "Player token: %s\n", v.Player.Token)
	case response.Player:
		o.printPlayer(v)
	case []response.HeldCard:
		o.printHand(v)
	case []response.Card:
		o.printCards(v)
	case response.CardDetail:
		o.printCards([]response.Card{v.Card})
	case []response.Character:
		o.printCharacters(v)
	case response.CharacterDetail:
		o.printCharacters([]response.Character{v.Character})
		if len(v.Cards) > 0 {
			fmt.Fprintln(o.w, "Starting cards:")
			o.printHand(v.Cards)
		}
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u response.User) {
	fmt.Fprintf(o.w, "User: %s <%s> (%d)\n", u.Name, u.Email, u.ID)
	fmt.Fprintf(o.w, "Role: %s\n", u.Role)
	if u.VerifiedAt != nil {
		fmt.Fprintf(o.w, "Verified: %s\n", u.VerifiedAt.Format("2006-01-02 15:04"))
	} else {
		fmt.Fprintln(o.w, "Verified: no")
	}
}

func (o *Output) printSession(s response.GameSession) {
	fmt.Fprintf(o.w, "Session: %s\n", s.Token)
	fmt.Fprintf(o.w, "Phase: %d (%s)\n", s.Phase, s.PhaseName)
	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		fmt.Fprintf(o.w, "  - %s\n", playerLine(p))
	}
}

func playerLine(p response.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", p.ID)
	if p.User != nil {
		fmt.Fprintf(&b, " %s", p.User.Name)
	}
	if p.Character != nil {
		fmt.Fprintf(&b, " as %s", p.Character.Name)
	}
	if p.Role == string(model.PlayerRoleHost) {
		b.WriteString(" [host]")
	}
	return b.String()
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s\n", playerLine(p))
	fmt.Fprintf(o.w, "Session: %s\n", p.GameSessionToken)
	if p.Token != "" {
		fmt.Fprintf(o.w, "Token: %s\n", p.Token)
	}
	fmt.Fprintf(o.w, "Sanity: %d  Endurance: %d\n", p.Status.Sanity, p.Status.Endurance)
	fmt.Fprintf(o.w, "Money: %d  Clues: %d\n", p.Equipment.Money, p.Equipment.Clues)
	if len(p.Cards) > 0 {
		fmt.Fprintln(o.w, "Cards:")
		o.printHand(p.Cards)
	}
}

func (o *Output) printHand(hand []response.HeldCard) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	for _, h := range hand {
		fmt.Fprintf(tw, "  %dx\t%s\t%s\t(%d)\n", h.Quantity, h.Card.Name, h.Card.Type, h.ID)
	}
	_ = tw.Flush()
}

func (o *Output) printCards(cards []response.Card) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tLOCALE")
	for _, c := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Locale)
	}
	_ = tw.Flush()
}

func (o *Output) printCharacters(characters []response.Character) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROFESSION\tEXPANSION\tSANITY\tENDURANCE")
	for _, c := range characters {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", c.ID, c.Name, c.Profession, c.Expansion, c.Sanity, c.Endurance)
	}
	_ = tw.Flush()
}
