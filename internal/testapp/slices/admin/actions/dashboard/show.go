package dashboard

import (
	"fmt"

	"github.com/slimloans/hanami/action"
	"github.com/slimloans/hanami/internal/testapp/repos"
)

type Show struct {
	Repo *repos.BookRepo `inject:"app.repos.book_repo"`
}

func (s *Show) Handle(req *action.Request, res *action.Response) error {
	res.SetBody(fmt.Sprintf("%d books", len(s.Repo.Books)))
	return nil
}
