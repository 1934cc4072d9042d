package console

import (
	"strings"

	"github.com/dilshat/contacts-admin/model"
	"github.com/dilshat/contacts-admin/util"
)

// PageSize is how many contacts of a sector are revealed at first and by each ShowMore.
const PageSize = 10

// Filter returns the contacts whose name, email or sector contain term ignoring
// case, or whose phone contains term. A blank term matches everything.
func Filter(contacts []model.Contact, term string) []model.Contact {
	term = strings.TrimSpace(term)
	filtered := make([]model.Contact, 0, len(contacts))
	for _, contact := range contacts {
		if term == "" ||
			util.ContainsFold(contact.Name, term) ||
			strings.Contains(contact.Phone, term) ||
			util.ContainsFold(contact.Email, term) ||
			util.ContainsFold(contact.Sector, term) {
			filtered = append(filtered, contact)
		}
	}
	return filtered
}

type SectorGroup struct {
	Sector   string
	Contacts []model.Contact
}

// GroupBySector partitions contacts by sector, keeping the order in which
// sectors and contacts are first seen. Blank sectors are grouped under
// model.DefaultSector.
func GroupBySector(contacts []model.Contact) []SectorGroup {
	var groups []SectorGroup
	index := make(map[string]int)
	for _, contact := range contacts {
		sector := model.SectorOrDefault(contact.Sector)
		i, ok := index[sector]
		if !ok {
			i = len(groups)
			index[sector] = i
			groups = append(groups, SectorGroup{Sector: sector})
		}
		groups[i].Contacts = append(groups[i].Contacts, contact)
	}
	return groups
}

type Row struct {
	Contact  model.Contact
	Selected bool
}

// Group is a sector as displayed: the visible page of rows and how many are hidden.
type Group struct {
	Sector    string
	Total     int
	Selected  bool
	Visible   []Row
	Remaining int
}

// State is an immutable view of the console. Every operation returns a new State
// and leaves the receiver untouched.
type State struct {
	contacts []model.Contact
	search   string
	visible  map[string]int
	selected map[int]bool
}

func NewState(contacts []model.Contact) State {
	return State{
		contacts: append([]model.Contact(nil), contacts...),
		visible:  map[string]int{},
		selected: map[int]bool{},
	}
}

func (s State) clone() State {
	next := State{
		contacts: s.contacts,
		search:   s.search,
		visible:  make(map[string]int, len(s.visible)),
		selected: make(map[int]bool, len(s.selected)),
	}
	for sector, count := range s.visible {
		next.visible[sector] = count
	}
	for id, selected := range s.selected {
		next.selected[id] = selected
	}
	return next
}

func (s State) Contacts() []model.Contact {
	return append([]model.Contact(nil), s.contacts...)
}

func (s State) SearchTerm() string {
	return s.search
}

func (s State) Filtered() []model.Contact {
	return Filter(s.contacts, s.search)
}

func (s State) Search(term string) State {
	next := s.clone()
	next.search = term
	return next
}

// VisibleCount is the number of rows revealed for sector before capping at its size.
func (s State) VisibleCount(sector string) int {
	if count, ok := s.visible[sector]; ok {
		return count
	}
	return PageSize
}

func (s State) ShowMore(sector string) State {
	next := s.clone()
	next.visible[sector] = s.VisibleCount(sector) + PageSize
	return next
}

// SelectSector sets the selection of every contact of sector that passes the
// current search.
func (s State) SelectSector(sector string, selected bool) State {
	next := s.clone()
	for _, contact := range s.Filtered() {
		if model.SectorOrDefault(contact.Sector) == sector {
			next.setSelected(contact.Id, selected)
		}
	}
	return next
}

func (s State) SelectContact(id int, selected bool) State {
	next := s.clone()
	next.setSelected(id, selected)
	return next
}

func (s State) ToggleContact(id int) State {
	return s.SelectContact(id, !s.selected[id])
}

func (s State) setSelected(id int, selected bool) {
	if selected {
		s.selected[id] = true
	} else {
		delete(s.selected, id)
	}
}

func (s State) IsSelected(id int) bool {
	return s.selected[id]
}

// Selected returns the selected contacts in list order.
func (s State) Selected() []model.Contact {
	var selected []model.Contact
	for _, contact := range s.contacts {
		if s.selected[contact.Id] {
			selected = append(selected, contact)
		}
	}
	return selected
}

func (s State) Groups() []Group {
	sectors := GroupBySector(s.Filtered())
	groups := make([]Group, 0, len(sectors))
	for _, sector := range sectors {
		visible := s.VisibleCount(sector.Sector)
		if visible > len(sector.Contacts) {
			visible = len(sector.Contacts)
		}

		group := Group{
			Sector:    sector.Sector,
			Total:     len(sector.Contacts),
			Selected:  true,
			Remaining: len(sector.Contacts) - visible,
		}
		for i, contact := range sector.Contacts {
			if !s.selected[contact.Id] {
				group.Selected = false
			}
			if i < visible {
				group.Visible = append(group.Visible, Row{Contact: contact, Selected: s.selected[contact.Id]})
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// Duplicate reports whether a stored contact has the same phone as contact, or
// the same email when contact has one.
func (s State) Duplicate(contact model.Contact) bool {
	phone := strings.TrimSpace(contact.Phone)
	email := strings.TrimSpace(contact.Email)
	for _, existing := range s.contacts {
		if existing.Phone == phone {
			return true
		}
		if email != "" && strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}

func (s State) Add(contacts ...model.Contact) State {
	next := s.clone()
	next.contacts = make([]model.Contact, 0, len(s.contacts)+len(contacts))
	next.contacts = append(next.contacts, s.contacts...)
	next.contacts = append(next.contacts, contacts...)
	return next
}

func (s State) Remove(id int) State {
	next := s.clone()
	next.contacts = make([]model.Contact, 0, len(s.contacts))
	for _, contact := range s.contacts {
		if contact.Id != id {
			next.contacts = append(next.contacts, contact)
		}
	}
	delete(next.selected, id)
	return next
}

// Replace swaps the contact list, keeping the search, pagination and the
// selection of contacts that are still present.
func (s State) Replace(contacts []model.Contact) State {
	next := s.clone()
	next.contacts = append([]model.Contact(nil), contacts...)
	present := make(map[int]bool, len(contacts))
	for _, contact := range contacts {
		present[contact.Id] = true
	}
	for id := range next.selected {
		if !present[id] {
			delete(next.selected, id)
		}
	}
	return next
}
