package lispy

import "fmt"

// version information, set at link time with
// -ldflags "-X github.com/billyedmoore/BuildYourOwnLisp/lispy.GITLASTTAG=..."
var GITLASTTAG string
var GITLASTCOMMIT string

func Version() string {
	if GITLASTTAG == "" && GITLASTCOMMIT == "" {
		return "dev"
	}
	return fmt.Sprintf("%s/%s", GITLASTTAG, GITLASTCOMMIT)
}
