package gesture

import "encoding/json"

// The enums marshal as their wire names so traces, the journal, and
// --json output stay readable and stable across enum reordering.

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	// The zero kind marshals as "unknown"; reading our own output back
	// must not fail on it.
	if s == "unknown" {
		*k = KindUnknown
		return nil
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "up":
		*d = DirectionUp
	case "down":
		*d = DirectionDown
	case "left":
		*d = DirectionLeft
	case "right":
		*d = DirectionRight
	default:
		*d = DirectionNone
	}
	return nil
}

func (f ForceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *ForceLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "light":
		*f = ForceLight
	case "medium":
		*f = ForceMedium
	case "heavy":
		*f = ForceHeavy
	default:
		*f = ForceNone
	}
	return nil
}

func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "left":
		*e = EdgeLeft
	case "right":
		*e = EdgeRight
	case "top":
		*e = EdgeTop
	case "bottom":
		*e = EdgeBottom
	default:
		*e = EdgeNone
	}
	return nil
}

func (o ContactOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *ContactOp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseContactOp(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
