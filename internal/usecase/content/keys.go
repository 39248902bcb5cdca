package content

import "amazetimes/internal/query"

// Read operations. Each names one Service method.
const (
	OpLatest      query.Op = "news-latest"
	OpBreaking    query.Op = "news-breaking"
	OpBySlug      query.Op = "news-slug"
	OpByParty     query.Op = "news-party"
	OpRelated     query.Op = "news-related"
	OpParties     query.Op = "parties"
	OpPartyBySlug query.Op = "party-slug"
	OpAdminList   query.Op = "admin-news"
	OpAdminGet    query.Op = "admin-article"
)

// Write operations.
const (
	MutationCreate query.Mutation = "article-create"
	MutationUpdate query.Mutation = "article-update"
	MutationDelete query.Mutation = "article-delete"
)

// publicListings are every listing a new or removed article can appear in.
var publicListings = []query.Op{OpAdminList, OpLatest, OpBreaking, OpByParty, OpRelated}

// Dependencies is the invalidation table. A create can only add rows to
// listings. Updates and deletes can also change or remove a row already
// cached under its slug or id. Party reads are never invalidated: there is
// no party write path.
var Dependencies = query.Dependencies{
	MutationCreate: publicListings,
	MutationUpdate: append(append([]query.Op{}, publicListings...), OpBySlug, OpAdminGet),
	MutationDelete: append(append([]query.Op{}, publicListings...), OpBySlug, OpAdminGet),
}

func LatestKey(limit int) query.Key        { return query.NewKey(OpLatest, limit) }
func BreakingKey(limit int) query.Key      { return query.NewKey(OpBreaking, limit) }
func BySlugKey(slug string) query.Key      { return query.NewKey(OpBySlug, slug) }
func PartiesKey() query.Key                { return query.NewKey(OpParties) }
func PartyBySlugKey(slug string) query.Key { return query.NewKey(OpPartyBySlug, slug) }
func AdminListKey() query.Key              { return query.NewKey(OpAdminList) }
func AdminGetKey(id string) query.Key      { return query.NewKey(OpAdminGet, id) }

func ByPartyKey(partyID string, limit int) query.Key {
	return query.NewKey(OpByParty, partyID, limit)
}

func RelatedKey(partyID, excludeID string, limit int) query.Key {
	return query.NewKey(OpRelated, partyID, excludeID, limit)
}
