package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/record"
)

func parseUID(s string) (uint64, error) {
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil || uid == 0 {
		return 0, errs.Validation("parse arguments", "uid must be a positive integer, got %q", s)
	}
	return uid, nil
}

func parsePlatform(s string) (record.Platform, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errs.Validation("parse arguments", "platform must be an integer in 0..65535, got %q", s)
	}
	return record.Platform(p), nil
}

// profileFlags binds --nickname, --gender, --signature and --region.
// Only flags given on the command line are set in the result.
type profileFlags struct {
	nickname  string
	gender    uint16
	signature string
	region    string
}

func (p *profileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.nickname, "nickname", "", "nickname (default \"\")")
	cmd.Flags().Uint16Var(&p.gender, "gender", 0, "gender code")
	cmd.Flags().StringVar(&p.signature, "signature", "", "signature (default \"0\")")
	cmd.Flags().StringVar(&p.region, "region", "", "region (default \"0\")")
}

func (p *profileFlags) fields(cmd *cobra.Command) record.ProfileFields {
	var f record.ProfileFields
	if cmd.Flags().Changed("nickname") {
		f.Nickname = &p.nickname
	}
	if cmd.Flags().Changed("gender") {
		g := record.Gender(p.gender)
		f.Gender = &g
	}
	if cmd.Flags().Changed("signature") {
		f.Signature = &p.signature
	}
	if cmd.Flags().Changed("region") {
		f.Region = &p.region
	}
	return f
}

// profileView renders a profile.
type profileView struct {
	*record.Profile
}

func (v profileView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uid:           %d\n", v.UID)
	fmt.Fprintf(&b, "nickname:      %s\n", v.Nickname)
	fmt.Fprintf(&b, "gender:        %d\n", v.Gender)
	fmt.Fprintf(&b, "signature:     %s\n", v.Signature)
	fmt.Fprintf(&b, "region:        %s\n", v.Region)
	fmt.Fprintf(&b, "registered at: %s\n", v.RegisteredAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "login count:   %d\n", v.LoginCount)
	fmt.Fprintf(&b, "last login at: %s", v.LastLoginAt.Format(time.RFC3339))
	return b.String()
}

// mappingView renders a mapping.
type mappingView struct {
	*record.Mapping
}

func (v mappingView) String() string {
	return fmt.Sprintf("uid %d = %s on platform %d (since %s)",
		v.UID, v.ExternalID, v.Platform, v.CreatedAt.Format(time.RFC3339))
}
