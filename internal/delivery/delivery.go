package delivery

import (
	"context"
	"errors"
)

var ErrEmptyAnswer = errors.New("delivery provider returned no entries")

// Result: список значений и признак того, что он взят из запасного источника.
type Result struct {
	Items    []string
	Degraded bool
}

type Provider interface {
	Cities(ctx context.Context) ([]string, error)
	Departments(ctx context.Context, city string) ([]string, error)
}

var (
	DefaultCities      = []string{"Київ", "Харків", "Одеса", "Львів"}
	DefaultDepartments = []string{"Відділення №1", "Відділення №2", "Відділення №3"}
)

// StaticProvider отдаёт фиксированные списки.
type StaticProvider struct {
	CityList       []string
	DepartmentList []string
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{CityList: DefaultCities, DepartmentList: DefaultDepartments}
}

func (p *StaticProvider) Cities(context.Context) ([]string, error) {
	return append([]string(nil), p.CityList...), nil
}

func (p *StaticProvider) Departments(context.Context, string) ([]string, error) {
	return append([]string(nil), p.DepartmentList...), nil
}
