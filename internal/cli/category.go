package cli

import "fmt"

type CategoryCmd struct {
	Add    CategoryAddCmd    `cmd:"" help:"Add a category."`
	List   CategoryListCmd   `cmd:"" help:"List categories and their trackers."`
	Delete CategoryDeleteCmd `cmd:"" help:"Delete a category with its trackers and their history."`
}

type CategoryAddCmd struct {
	Name string `arg:"" help:"Category name."`
}

func (c *CategoryAddCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	if _, _, ok := s.Categories.FindByName(c.Name); ok {
		return fmt.Errorf("category with name %q already exists", c.Name)
	}

	category, err := s.Categories.Add(ctx.bg(), c.Name)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Added category: %s\n", category.Name)
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	if s.Categories.IsEmpty() {
		fmt.Fprintln(ctx.out(), "No categories found.")
		return nil
	}

	for i := 0; i < s.Categories.NumberOfRows(); i++ {
		category, _ := s.Categories.Object(i)
		renderCategory(ctx.out(), category)
	}
	return nil
}

type CategoryDeleteCmd struct {
	Name string `arg:"" help:"Category name."`
	Yes  bool   `short:"y" help:"Skip confirmation."`
}

func (c *CategoryDeleteCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	category, index, err := s.findCategory(c.Name)
	if err != nil {
		return err
	}

	if !c.Yes && len(category.Trackers) > 0 {
		ok, err := ctx.confirm(fmt.Sprintf("Delete %q and its %d tracker(s)?", category.Name, len(category.Trackers)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.out(), "Delete cancelled.")
			return nil
		}
	}

	if err := s.Categories.Delete(ctx.bg(), index); err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Deleted category: %s\n", category.Name)
	return nil
}
