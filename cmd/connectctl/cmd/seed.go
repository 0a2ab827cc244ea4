package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	domainerrors "github.com/connectapp/connect-server/internal/errors"
	"github.com/connectapp/connect-server/internal/service"
)

// fixtures is the seed file layout:
//
//	users:
//	  - name: Ada
//	    email: ada@example.edu
//	    role: student
//	    fields_of_interest: [python, research]
//	    posts:
//	      - content: Anyone up for a study group?
//	        tags: [python]
type fixtures struct {
	Users []fixtureUser `yaml:"users"`
}

type fixtureUser struct {
	service.RegisterUserInput `yaml:",inline"`
	Posts                     []service.CreatePostInput `yaml:"posts"`
}

// seedResult counts what a seed run did.
type seedResult struct {
	Users   int `json:"users"`
	Posts   int `json:"posts"`
	Skipped int `json:"skipped"`
}

func parseFixtures(r io.Reader) (*fixtures, error) {
	var f fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if domainerrors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// seed registers every fixture user and their posts. Users whose email is
// already registered are skipped along with their posts, so a file can be
// applied more than once.
func seed(ctx context.Context, users *service.UserService, f *fixtures) (seedResult, error) {
	var res seedResult
	for i, fu := range f.Users {
		user, err := users.RegisterUser(ctx, fu.RegisterUserInput)
		if err != nil {
			if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("user %d (%s): %w", i+1, fu.Email, err)
		}
		res.Users++

		for j, p := range fu.Posts {
			if _, err := users.CreatePost(ctx, user.ID, p); err != nil {
				return res, fmt.Errorf("user %d (%s) post %d: %w", i+1, fu.Email, j+1, err)
			}
			res.Posts++
		}
	}
	return res, nil
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Load users, interests and posts from a YAML fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()

			f, err := parseFixtures(fh)
			if err != nil {
				return err
			}

			return opts.run(cmd, func(ctx context.Context, a *app) error {
				res, err := seed(ctx, a.users, f)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")
	_ = c.MarkFlagRequired("file")
	return c
}
