package i18n

import "fmt"

// categoryLabels holds the display names of article categories.
var categoryLabels = map[string]Pair{
	"elections":  {EN: "Elections", TA: "தேர்தல்கள்"},
	"government": {EN: "Government", TA: "அரசு"},
	"statements": {EN: "Statements", TA: "அறிக்கைகள்"},
	"protests":   {EN: "Protests", TA: "போராட்டங்கள்"},
	"general":    {EN: "General", TA: "பொது"},
}

// CategoryLabel returns the localized label of a category.
// Unknown categories are labelled as general.
func (r Resolver) CategoryLabel(category string) string {
	p, ok := categoryLabels[category]
	if !ok {
		p = categoryLabels["general"]
	}
	return r.Pick(p)
}

// Message identifies a fixed interface string.
type Message string

const (
	MsgTopStories       Message = "top_stories"
	MsgLatestNews       Message = "latest_news"
	MsgNoNews           Message = "no_news"
	MsgBreaking         Message = "breaking"
	MsgPartyNotFound    Message = "party_not_found"
	MsgArticleNotFound  Message = "article_not_found"
	MsgArticleMissing   Message = "article_missing"
	MsgReturnHome       Message = "return_home"
	MsgBackTo           Message = "back_to"
	MsgBackHome         Message = "back_home"
	MsgRelatedNews      Message = "related_news"
	MsgSource           Message = "source"
	MsgPoliticalParties Message = "political_parties"
	MsgAllNews          Message = "all_news"
	MsgFounded          Message = "founded"
	MsgAdvertisement    Message = "advertisement"
	MsgPartyMissing     Message = "party_missing"
	MsgAll              Message = "all"
	MsgNoCategoryNews   Message = "no_category_news"
)

var messages = map[Message]Pair{
	MsgTopStories:       {EN: "Top Stories", TA: "முக்கிய செய்திகள்"},
	MsgLatestNews:       {EN: "Latest News", TA: "சமீபத்திய செய்திகள்"},
	MsgNoNews:           {EN: "No news available", TA: "செய்திகள் இல்லை"},
	MsgBreaking:         {EN: "Breaking", TA: "முக்கிய செய்தி"},
	MsgPartyNotFound:    {EN: "Party Not Found", TA: "கட்சி கிடைக்கவில்லை"},
	MsgArticleNotFound:  {EN: "Article Not Found", TA: "செய்தி கிடைக்கவில்லை"},
	MsgArticleMissing:   {EN: "The article you are looking for does not exist.", TA: "நீங்கள் தேடும் செய்தி இல்லை."},
	MsgReturnHome:       {EN: "Return to Home", TA: "முகப்புக்கு திரும்பு"},
	MsgBackTo:           {EN: "Back to", TA: "திரும்பு"},
	MsgBackHome:         {EN: "Back to Home", TA: "முகப்புக்கு திரும்பு"},
	MsgRelatedNews:      {EN: "Related News", TA: "தொடர்புடைய செய்திகள்"},
	MsgSource:           {EN: "Source:", TA: "ஆதாரம்:"},
	MsgPoliticalParties: {EN: "Political Parties", TA: "அரசியல் கட்சிகள்"},
	MsgAllNews:          {EN: "All News", TA: "அனைத்து செய்திகள்"},
	MsgFounded:          {EN: "Founded: %d", TA: "நிறுவப்பட்டது: %d"},
	MsgAdvertisement:    {EN: "Advertisement", TA: "விளம்பரம்"},
	MsgPartyMissing:     {EN: "The political party you are looking for does not exist.", TA: "நீங்கள் தேடும் அரசியல் கட்சி இல்லை."},
	MsgAll:              {EN: "All", TA: "அனைத்தும்"},
	MsgNoCategoryNews:   {EN: "No news in this category", TA: "இந்த பிரிவில் செய்திகள் இல்லை"},
}

// Message returns the localized interface string for id, or the id itself when unknown.
func (r Resolver) Message(id Message) string {
	p, ok := messages[id]
	if !ok {
		return string(id)
	}
	return r.Pick(p)
}

// Founded formats the founding year label of a party.
func (r Resolver) Founded(year int) string {
	return fmt.Sprintf(r.Message(MsgFounded), year)
}
