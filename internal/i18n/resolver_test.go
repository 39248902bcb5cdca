package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	TitleEN       string
	TitleTA       string
	DescriptionEN *string
	DescriptionTA *string
	Count         int
}

func TestText(t *testing.T) {
	pairs := []Pair{
		{EN: "Election Results", TA: "தேர்தல் முடிவுகள்"},
		{EN: "", TA: "வணக்கம்"},
		{EN: "Hello", TA: ""},
		{EN: "same", TA: "same"},
	}

	for _, p := range pairs {
		assert.Equal(t, p.EN, Text(English, p.EN, p.TA))
		assert.Equal(t, p.TA, Text(Tamil, p.EN, p.TA))
		// 連結は返さない
		if p.EN != "" && p.TA != "" && p.EN != p.TA {
			assert.NotEqual(t, p.EN+p.TA, Text(English, p.EN, p.TA))
		}
	}
}

func TestResolver_ZeroValueIsEnglish(t *testing.T) {
	var r Resolver
	assert.Equal(t, English, r.Language())
	assert.Equal(t, "en", r.Text("en", "ta"))
}

func TestNewResolver_InvalidFallsBack(t *testing.T) {
	r := NewResolver(Language("fr"))
	assert.Equal(t, English, r.Language())
}

func TestResolver_Pick(t *testing.T) {
	p := Pair{EN: "Parties", TA: "கட்சிகள்"}
	assert.Equal(t, "Parties", NewResolver(English).Pick(p))
	assert.Equal(t, "கட்சிகள்", NewResolver(Tamil).Pick(p))
	assert.Equal(t, "", NewResolver(Tamil).Pick(nil))

	var nilPair *Pair
	assert.Equal(t, "", NewResolver(Tamil).Pick(nilPair))
}

func TestResolver_Field(t *testing.T) {
	desc := "Founded in 1949"
	descTA := "1949 இல் நிறுவப்பட்டது"
	rec := &record{
		TitleEN:       "DMK",
		TitleTA:       "திமுக",
		DescriptionEN: &desc,
		DescriptionTA: &descTA,
		Count:         3,
	}

	en := NewResolver(English)
	ta := NewResolver(Tamil)

	assert.Equal(t, "DMK", en.Field(rec, "Title"))
	assert.Equal(t, "திமுக", ta.Field(rec, "Title"))
	assert.Equal(t, desc, en.Field(*rec, "Description"))
	assert.Equal(t, descTA, ta.Field(rec, "Description"))

	t.Run("missing field", func(t *testing.T) {
		assert.Equal(t, "", en.Field(rec, "Name"))
	})
	t.Run("nil pointer field", func(t *testing.T) {
		assert.Equal(t, "", en.Field(&record{}, "Description"))
	})
	t.Run("nil record", func(t *testing.T) {
		var nilRec *record
		assert.Equal(t, "", en.Field(nilRec, "Title"))
	})
	t.Run("non struct", func(t *testing.T) {
		assert.Equal(t, "", en.Field("text", "Title"))
	})
}

func TestParse(t *testing.T) {
	l, err := Parse("ta")
	assert.NoError(t, err)
	assert.Equal(t, Tamil, l)

	_, err = Parse("TA")
	assert.Error(t, err)

	assert.Equal(t, English, ParseOrDefault(""))
	assert.Equal(t, English, ParseOrDefault("hi"))
	assert.Equal(t, Tamil, ParseOrDefault("ta"))
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   Language
	}{
		{"", English},
		{"ta", Tamil},
		{"ta-IN,ta;q=0.9,en;q=0.8", Tamil},
		{"en-US,en;q=0.9", English},
		{"fr-FR", English},
		{"fr;q=0.9,ta;q=0.8", Tamil},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.header))
		})
	}
}

func TestResolver_CategoryLabel(t *testing.T) {
	en := NewResolver(English)
	ta := NewResolver(Tamil)

	assert.Equal(t, "Elections", en.CategoryLabel("elections"))
	assert.Equal(t, "தேர்தல்கள்", ta.CategoryLabel("elections"))
	assert.Equal(t, "போராட்டங்கள்", ta.CategoryLabel("protests"))
	assert.Equal(t, "General", en.CategoryLabel("sports"))
	assert.Equal(t, "பொது", ta.CategoryLabel(""))
}

func TestResolver_Message(t *testing.T) {
	assert.Equal(t, "Top Stories", NewResolver(English).Message(MsgTopStories))
	assert.Equal(t, "செய்திகள் இல்லை", NewResolver(Tamil).Message(MsgNoNews))
	assert.Equal(t, "unknown", NewResolver(Tamil).Message(Message("unknown")))
	assert.Equal(t, "Founded: 1949", NewResolver(English).Founded(1949))
	assert.Equal(t, "நிறுவப்பட்டது: 1972", NewResolver(Tamil).Founded(1972))
}
