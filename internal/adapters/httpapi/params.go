package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/Overland-East-Bay/club-roster/internal/app/roster"
	"github.com/Overland-East-Bay/club-roster/internal/domain"
)

func bindMemberID(r *http.Request) (domain.MemberID, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "memberId", chi.URLParam(r, "memberId"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return 0, roster.InvalidArgument("memberId", "must be an integer")
	}
	return domain.MemberID(id), nil
}

// bindQuery binds a single form-style query parameter into dest.
// A missing optional parameter leaves dest untouched.
func bindQuery(r *http.Request, name string, required bool, dest *string) error {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		return roster.InvalidArgument(name, err.Error())
	}
	return nil
}
