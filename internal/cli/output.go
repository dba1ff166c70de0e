package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/brentkao/roomcoord/internal/protocol"
)

// Output formats command results as text or JSON. It is safe for
// concurrent use.
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
	mu     sync.Mutex
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{"error": map[string]string{"message": err.Error()}})
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

// PrintEnvelope outputs one received envelope. JSON output is one compact
// envelope per line.
func (o *Output) PrintEnvelope(env protocol.RawEnvelope) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.format == "json" {
		data, _ := json.Marshal(env)
		fmt.Fprintln(o.out, string(data))
		return
	}

	var head struct {
		Msg string `json:"msg"`
	}
	_ = json.Unmarshal(env.Data, &head)
	fmt.Fprintf(o.out, "< %s: %s\n", env.Type, head.Msg)

	switch env.Type {
	case protocol.TypeError:
		var e protocol.ErrorData
		if json.Unmarshal(env.Data, &e) == nil {
			fmt.Fprintf(o.out, "  %s (%s)\n", e.Kind, e.Code)
			for _, f := range e.Errors {
				fmt.Fprintf(o.out, "  - %s: %s\n", f.Field, f.Error)
			}
		}
	case protocol.TypeGameOver:
		var g protocol.GameOverData
		if json.Unmarshal(env.Data, &g) == nil {
			o.printGameOver(g)
		}
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case MeResult:
		o.printMe(v)
	case TicketResult:
		o.printTicket(v)
	case HealthResult:
		o.printHealthResult(v)
	case protocol.RoomListData:
		o.printRoomList(v)
	default:
		o.printJSON(data)
	}
}

// Player response type
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult is the credential returned by guest, register and login
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	Player    Player    `json:"player"`
}

// MeResult describes the current credential
type MeResult struct {
	UserID string  `json:"userId"`
	Role   string  `json:"role"`
	Player *Player `json:"player,omitempty"`
}

// TicketResult is a freshly minted connection ticket
type TicketResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.out, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.out, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.out, "Role: %s\n", a.Role)
	fmt.Fprintf(o.out, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printMe(m MeResult) {
	fmt.Fprintf(o.out, "User: %s\n", m.UserID)
	fmt.Fprintf(o.out, "Role: %s\n", m.Role)
	if m.Player != nil {
		o.printPlayer(*m.Player)
	}
}

func (o *Output) printTicket(t TicketResult) {
	fmt.Fprintf(o.out, "Ticket: %s\n", t.Token)
	fmt.Fprintf(o.out, "Expires: %s\n", t.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.out, "Status: %s\n", h.Status)
	fmt.Fprintf(o.out, "Connections: %d\n", h.Connections)
	fmt.Fprintf(o.out, "Rooms: %d\n", h.Rooms)
}

func (o *Output) printRoomList(l protocol.RoomListData) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.out, "No public rooms")
		return
	}
	fmt.Fprintf(o.out, "%-36s  %-8s  %-10s  %s\n", "ROOM", "SEATS", "STATUS", "HOST")
	for _, r := range l.Rooms {
		fmt.Fprintf(o.out, "%-36s  %-8s  %-10s  %s\n",
			r.RoomID, fmt.Sprintf("%d/%d", len(r.Members), r.Capacity), r.Status, r.HostID)
	}
}

// markSymbols label players on a printed board in turn order
const markSymbols = "XOAB"

func (o *Output) printGameOver(g protocol.GameOverData) {
	switch {
	case g.Draw:
		fmt.Fprintln(o.out, "  Result: draw")
	case g.ForfeitedBy != "":
		fmt.Fprintf(o.out, "  Result: %s forfeited, winner %s\n", g.ForfeitedBy, g.Winner)
	default:
		fmt.Fprintf(o.out, "  Result: winner %s\n", g.Winner)
	}

	symbols := make(map[string]byte, len(g.Room.Members))
	for i, m := range g.Room.Members {
		if i < len(markSymbols) {
			symbols[string(m)] = markSymbols[i]
			fmt.Fprintf(o.out, "  %c = %s\n", markSymbols[i], m)
		}
	}
	for _, row := range g.Board {
		var b strings.Builder
		b.WriteString("  ")
		for _, cell := range row {
			switch sym, ok := symbols[string(cell)]; {
			case cell == "":
				b.WriteByte('.')
			case ok:
				b.WriteByte(sym)
			default:
				b.WriteByte('?')
			}
		}
		fmt.Fprintln(o.out, b.String())
	}
}
