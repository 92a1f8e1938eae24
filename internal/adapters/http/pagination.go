package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination describes an offset page. HasMore is inferred from a full page,
// so the final page may be empty.
type Pagination struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

func newPagination(offset, limit, count int) Pagination {
	return Pagination{Offset: offset, Limit: limit, Count: count, HasMore: count >= limit && limit > 0}
}

// SetLinkHeaders adds RFC 8288 Link headers for a paginated response,
// keeping any filters the client sent.
func SetLinkHeaders(c *fiber.Ctx, p Pagination, extra ...string) {
	base := c.Path()
	filters := ""
	if len(extra) > 0 {
		filters = "&" + strings.Join(extra, "&")
	}
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d%s>; rel="%s"`, base, offset, p.Limit, filters, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.HasMore {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	c.Set("Link", strings.Join(links, ", "))
}
