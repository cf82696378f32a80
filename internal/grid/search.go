package grid

import "github.com/roach88/slotmap/internal/model"

// Query selects rooms by department and category and asks about one slot.
// Empty Department or Category match everything.
type Query struct {
	Department string
	Category   model.Category
	Day        model.Day
	Hour       model.Hour
}

// Availability is one search hit.
type Availability struct {
	Room       model.RoomID   `json:"room_id"`
	Floor      int            `json:"floor"`
	Department string         `json:"department"`
	Category   model.Category `json:"category"`
	Free       bool           `json:"free"`
}

// Search reports availability at q's slot for every matching room, in id
// order. Department and category compare case-insensitively.
func (g *Grid) Search(q Query) []Availability {
	var out []Availability
	if !q.Day.Valid() || !q.Hour.Valid() {
		return out
	}
	for _, id := range g.order {
		r := g.rooms[id]
		if q.Department != "" && !model.FoldEqual(r.Department, q.Department) {
			continue
		}
		if q.Category != "" && !model.FoldEqual(string(r.Category), string(q.Category)) {
			continue
		}
		out = append(out, Availability{
			Room:       r.ID,
			Floor:      r.ID.Floor(),
			Department: r.Department,
			Category:   r.Category,
			Free:       !r.Occupied[q.Day][q.Hour],
		})
	}
	return out
}
