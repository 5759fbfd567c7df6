package types

type ChoiceSetRef struct {
	ID int `json:"id"`
}

type CustomField struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	ChoiceSet *ChoiceSetRef `json:"choice_set"`
}

// ChoiceSet holds the valid values of a custom field. ExtraChoices entries
// are [value, label] pairs.
type ChoiceSet struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	ExtraChoices [][2]string `json:"extra_choices"`
}
