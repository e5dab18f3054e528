package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

// TeamMembers lists the workspace's seats (tolerant unwrap).
func (c *Client) TeamMembers(ctx context.Context) ([]domain.TeamMember, error) {
	raw, err := c.Request(ctx, "/team/members", RequestOptions{Operation: "team.list"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.TeamMember](raw, c.logger, "team.list"), nil
}

// InviteTeamMember sends an invite. The backend answers with null data when
// the address already holds a pending invite, which is not a failure here.
func (c *Client) InviteTeamMember(ctx context.Context, email, role string) (*domain.TeamMember, error) {
	raw, err := c.Request(ctx, "/team/invites", RequestOptions{
		Method:    http.MethodPost,
		Operation: "team.invite",
		JSON:      map[string]string{"email": email, "role": role},
	})
	if err != nil {
		return nil, err
	}
	return UnwrapNullable[domain.TeamMember](raw, "team.invite")
}

// RemoveTeamMember revokes a seat.
func (c *Client) RemoveTeamMember(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/team/members/"+id, RequestOptions{
		Method:    http.MethodDelete,
		Operation: "team.remove",
	})
	return err
}

// UploadWorkspaceLogo replaces the white-label logo. The image travels as a
// multipart body; the boundary content type comes from the writer.
func (c *Client) UploadWorkspaceLogo(ctx context.Context, filename string, content []byte) error {
	_, err := c.PostMultipart(ctx, "/team/branding/logo",
		map[string]string{"filename": filename},
		map[string][]byte{"logo": content},
		RequestOptions{Operation: "team.logo"},
	)
	return err
}
