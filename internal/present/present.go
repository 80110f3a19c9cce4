// Package present holds the provider-neutral messages the dialogue emits.
// Adapters such as internal/whatsapp render them into wire formats.
package present

// Kind tags a Message.
type Kind int

const (
	KindText Kind = iota
	KindButtons
	KindList
)

// MaxButtons is the largest button set a Buttons message may carry.
const MaxButtons = 3

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindButtons:
		return "buttons"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Button is a quick reply choice. ID comes back as the inbound token.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Row is one selectable list entry.
type Row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Section groups list rows under a title.
type Section struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Message is one outbound directive. Body is always set; Buttons is used by
// KindButtons and Sections plus ButtonLabel by KindList.
type Message struct {
	Kind        Kind      `json:"kind"`
	Body        string    `json:"body"`
	Buttons     []Button  `json:"buttons,omitempty"`
	ButtonLabel string    `json:"button_label,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
}

// Text builds a plain text message.
func Text(body string) Message {
	return Message{Kind: KindText, Body: body}
}

// Buttons builds a choice set, keeping at most MaxButtons buttons.
func Buttons(body string, buttons ...Button) Message {
	if len(buttons) > MaxButtons {
		buttons = buttons[:MaxButtons]
	}
	return Message{Kind: KindButtons, Body: body, Buttons: buttons}
}

// List builds a sectioned list opened by a button labelled label.
func List(body, label string, sections ...Section) Message {
	return Message{Kind: KindList, Body: body, ButtonLabel: label, Sections: sections}
}

// Rows counts the rows across all sections.
func (m Message) Rows() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Rows)
	}
	return n
}
