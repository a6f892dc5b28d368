package models

// Node is a schema value addressable by natural key.
type Node interface {
	Kind() NodeKind
	Key() string
	Props() map[string]any
}

// User is the write shape of a User node.
type User struct {
	ID          string `validate:"required"`
	Name        string
	Gender      *int
	School      string
	YearOfBirth *int `validate:"omitempty,gte=1900,lte=2100"`
	Age         *int `validate:"omitempty,gte=0,lte=150"`
	Location    string
}

func (u User) Kind() NodeKind { return KindUser }
func (u User) Key() string    { return u.ID }

func (u User) Props() map[string]any {
	p := props{}
	p.str("name", u.Name)
	p.intp("gender", u.Gender)
	p.str("school", u.School)
	p.intp("year_of_birth", u.YearOfBirth)
	p.intp("age", u.Age)
	p.str("location", u.Location)
	return p.stamp()
}

// Course is the write shape of a Course node. A Course with only an ID is a stub.
type Course struct {
	ID            string `validate:"required"`
	Name          string
	Prerequisites string
	About         string
}

func (c Course) Kind() NodeKind { return KindCourse }
func (c Course) Key() string    { return c.ID }

func (c Course) Props() map[string]any {
	p := props{}
	p.str("name", c.Name)
	p.str("prerequisites", c.Prerequisites)
	p.str("about", c.About)
	return p.stamp()
}

// Video is the write shape of a Video node.
type Video struct {
	ID       string   `validate:"required"`
	Name     string
	Duration *float64 `validate:"omitempty,gte=0"`
	Tags     []string
}

func (v Video) Kind() NodeKind { return KindVideo }
func (v Video) Key() string    { return v.ID }

func (v Video) Props() map[string]any {
	p := props{}
	p.str("name", v.Name)
	p.floatp("duration", v.Duration)
	if len(v.Tags) > 0 {
		p["tags"] = append([]string(nil), v.Tags...)
	}
	return p.stamp()
}

// Segment is the write shape of a Segment node.
type Segment struct {
	ID      string `validate:"required"`
	VideoID string `validate:"required"`
	Index   int    `validate:"gte=0"`
	Start   float64
	End     float64 `validate:"gtefield=Start"`
	Text    string
}

func (s Segment) Kind() NodeKind { return KindSegment }
func (s Segment) Key() string    { return s.ID }

func (s Segment) Props() map[string]any {
	p := props{
		"video_id": s.VideoID,
		"index":    s.Index,
		"start":    s.Start,
		"end":      s.End,
	}
	p.str("text", s.Text)
	return p.stamp()
}

// props collects only the attributes that are present so an upsert never
// clears a value it was not given.
type props map[string]any

func (p props) str(key, v string) {
	if v != "" {
		p[key] = v
	}
}

func (p props) intp(key string, v *int) {
	if v != nil {
		p[key] = *v
	}
}

func (p props) floatp(key string, v *float64) {
	if v != nil {
		p[key] = *v
	}
}

func (p props) strp(key string, v *string) {
	if v != nil && *v != "" {
		p[key] = *v
	}
}

func (p props) stamp() map[string]any {
	p["schema_version"] = SchemaVersion
	return p
}
