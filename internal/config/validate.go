package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"beacon-dashboard/internal/domain"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

var validate = validator.New()

// NormalizeAndValidate returns a normalized copy of cfg and the problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Columns.ConsentTokens = trimList(out.Columns.ConsentTokens)
	cats := make([]domain.Category, 0, len(out.Categories))
	for _, c := range out.Categories {
		c.Label = strings.TrimSpace(c.Label)
		c.Short = strings.TrimSpace(c.Short)
		c.Color = strings.TrimSpace(c.Color)
		cats = append(cats, c)
	}
	out.Categories = cats

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				res.addErr("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
			}
		} else {
			res.addErr("%v", err)
		}
	}

	if _, err := domain.NewCatalog(out.Categories); err != nil {
		res.addErr("categories: %v", err)
	}
	if len(out.Categories) == 0 {
		res.addWarn("no categories configured; every opportunity will be ignored.")
	}

	if out.Cache.TTLSeconds > 0 && out.Cache.TTLSeconds < 10 {
		res.addWarn("cache.ttl_seconds is very low (%d) and may hit Monday.com rate limits.", out.Cache.TTLSeconds)
	}
	if out.Dashboard.PollSeconds > 0 && out.Cache.TTLSeconds > 0 && out.Dashboard.PollSeconds > out.Cache.TTLSeconds*10 {
		res.addWarn("dashboard.poll_seconds (%d) is much longer than cache.ttl_seconds (%d).", out.Dashboard.PollSeconds, out.Cache.TTLSeconds)
	}
	if out.Monday.APIToken != "" {
		res.addWarn("monday.api_token is set in the config file; prefer MONDAY_API_TOKEN or the OS keyring.")
	}

	return out, res
}

func trimList(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" || seen[x] {
			continue
		}
		seen[x] = true
		ys = append(ys, x)
	}
	return ys
}
