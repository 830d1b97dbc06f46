package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/mendhq/mend/internal/types"
)

// emailBodyTemplate renders the HTML approval email. Links point at the
// configured base URL so a reviewer can decide with one click.
var emailBodyTemplate = template.Must(template.New("email").Parse(`<html>
<body>
  <h2>Repair Approval Required</h2>
  <p>An automated repair is waiting for your sign-off.</p>

  <h3>Repair Details</h3>
  <ul>
    <li><strong>Request:</strong> {{.Request.ID}}</li>
    <li><strong>Type:</strong> {{.Repair.Type}}</li>
    <li><strong>File:</strong> {{.Repair.File}}</li>
    <li><strong>Line:</strong> {{.Repair.Line}}</li>
    <li><strong>Severity:</strong> {{.Repair.Severity}}</li>
    <li><strong>Description:</strong> {{.Repair.Description}}</li>
  </ul>

  <h3>Proposed Change</h3>
  <pre>{{.Repair.Solution}}</pre>

  <p>Please approve or reject before {{.Deadline}}.</p>
  <p>
    <a href="{{.ApproveURL}}">Approve</a> |
    <a href="{{.RejectURL}}">Reject</a>
  </p>

  <hr>
  <p><small>This is an automated message; replies are not monitored.</small></p>
</body>
</html>
`))

type emailBodyData struct {
	Request    *types.ApprovalRequest
	Repair     types.RepairDescriptor
	Deadline   string
	ApproveURL string
	RejectURL  string
}

// renderEmailBody produces the HTML body for an approval email
func renderEmailBody(req *types.ApprovalRequest, baseURL string) (string, error) {
	var buf bytes.Buffer
	err := emailBodyTemplate.Execute(&buf, emailBodyData{
		Request:    req,
		Repair:     req.Repair,
		Deadline:   req.ExpiresAt.Format(time.RFC3339),
		ApproveURL: fmt.Sprintf("%s/approve/%s?decision=approve", baseURL, req.ID),
		RejectURL:  fmt.Sprintf("%s/approve/%s?decision=reject", baseURL, req.ID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email body: %w", err)
	}
	return buf.String(), nil
}

// Subject builds the notification subject line for a request
func Subject(req *types.ApprovalRequest) string {
	return fmt.Sprintf("mend: approval required for repair %s", req.ID)
}
