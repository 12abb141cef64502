package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/dialog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/view"
	"github.com/utafrali/storefront/pkg/health"
)

const usage = `usage: reviewctl <command> [flags]

commands:
  products                      list the catalog
  product <product-id>          show one product and its sizes
  reviews [-json] <product-id>  list the reviews of a product
  sizes <product-id>            list the sizes you bought
  review create|edit|delete     write, edit or delete a review
  cart add                      add a product to the cart
  health                        check the storefront API and backends
`

var errUsage = errors.New("invalid usage")

type cli struct {
	app    *app.App
	out    io.Writer
	errOut io.Writer
}

func newCLI(a *app.App, out, errOut io.Writer) *cli {
	return &cli{app: a, out: out, errOut: errOut}
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.errOut, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "products":
		return c.products(ctx)
	case "product":
		return c.product(ctx, rest)
	case "reviews":
		return c.reviews(ctx, rest)
	case "sizes":
		return c.sizes(ctx, rest)
	case "review":
		return c.review(ctx, rest)
	case "cart":
		return c.cart(ctx, rest)
	case "health":
		return c.health(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		fmt.Fprint(c.errOut, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func oneArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", fmt.Errorf("%w: %s expects a %s", errUsage, fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func (c *cli) products(ctx context.Context) error {
	list, err := c.app.Products.ListProducts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSIZES")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Price, sizeSummary(p))
	}
	return tw.Flush()
}

func (c *cli) product(ctx context.Context, args []string) error {
	fs := c.flagSet("product")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneArg(fs, "product id")
	if err != nil {
		return err
	}

	p, err := c.app.Products.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n%s\nprice: %d\nsizes: %s\n", p.Name, p.ID, p.Description, p.Price, sizeSummary(*p))
	return nil
}

func sizeSummary(p domain.Product) string {
	opts := p.SizeOptions()
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = domain.DisplaySize(o.Size)
		if !o.InStock {
			parts[i] += "(sold out)"
		}
	}
	return strings.Join(parts, " ")
}

func (c *cli) reviews(ctx context.Context, args []string) error {
	fs := c.flagSet("reviews")
	asJSON := fs.Bool("json", false, "print the rendered rows as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	productID, err := oneArg(fs, "product id")
	if err != nil {
		return err
	}

	reviews, err := c.app.Reviews.ListReviews(ctx, productID)
	if err != nil {
		return err
	}
	list := view.List(reviews, c.app.Session.UserID(), c.app.Config.Locale, c.app.Config.Location())

	if *asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if list.Empty != "" {
		fmt.Fprintln(c.out, list.Empty)
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUTHOR\tSIZE\tRATING\tDATE\tCONTENT\t")
	for _, r := range list.Rows {
		mark := ""
		if r.CanEdit {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%s\t\n", r.ID, mark, r.AuthorName, r.Size, r.Stars, r.Date, r.Content)
	}
	return tw.Flush()
}

func (c *cli) sizes(ctx context.Context, args []string) error {
	fs := c.flagSet("sizes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	productID, err := oneArg(fs, "product id")
	if err != nil {
		return err
	}

	sizes, err := c.app.Eligibility.PurchasedSizes(ctx, productID)
	if err != nil {
		return err
	}
	sizes = domain.EligibleSizes(sizes)
	if len(sizes) == 0 {
		fmt.Fprintln(c.out, "no purchased sizes")
		return nil
	}
	for _, s := range sizes {
		fmt.Fprintln(c.out, domain.DisplaySize(s))
	}
	return nil
}

func (c *cli) review(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: review expects create, edit or delete", errUsage)
	}
	switch args[0] {
	case "create":
		return c.reviewCreate(ctx, args[1:])
	case "edit":
		return c.reviewEdit(ctx, args[1:])
	case "delete":
		return c.reviewDelete(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown review command %q", errUsage, args[0])
	}
}

type formFlags struct {
	content string
	rate    int
	image   string
}

func (f *formFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.content, "content", "", "review text")
	fs.IntVar(&f.rate, "rate", domain.MaxRate, "star rating from 0 to 5")
	fs.StringVar(&f.image, "image", "", "image URL")
}

// apply writes only the flags given on the command line, so an edit keeps
// the fields the shopper left alone.
func (f *formFlags) apply(fs *flag.FlagSet, d *dialog.Controller) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "content":
			err = d.Set(dialog.FieldContent, f.content)
		case "rate":
			err = d.Set(dialog.FieldRate, fl.Value.String())
		case "image":
			d.UploadImage(f.image)
		}
	})
	return err
}

func (c *cli) reviewCreate(ctx context.Context, args []string) error {
	fs := c.flagSet("review create")
	productID := fs.String("product", "", "product id")
	size := fs.String("size", "", "purchased size; defaults to the first one")
	var form formFlags
	form.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" {
		return fmt.Errorf("%w: -product is required", errUsage)
	}

	d := c.app.Dialog
	if err := d.OpenNew(ctx, *productID); err != nil {
		d.Cancel()
		return err
	}
	defer d.Cancel()

	v := d.Snapshot()
	if v.MissingSize {
		return domain.ErrNoEligibleSize
	}
	if *size != "" {
		if err := d.SetSize(*size); err != nil {
			return err
		}
	}
	// rate always applies on create so the default is sent.
	if err := d.SetRate(form.rate); err != nil {
		return err
	}
	if err := form.apply(fs, d); err != nil {
		return err
	}
	return c.submit(ctx, d)
}

func (c *cli) reviewEdit(ctx context.Context, args []string) error {
	fs := c.flagSet("review edit")
	productID := fs.String("product", "", "product id")
	reviewID := fs.String("id", "", "review id")
	var form formFlags
	form.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" || *reviewID == "" {
		return fmt.Errorf("%w: -product and -id are required", errUsage)
	}

	r, err := c.findReview(ctx, *productID, *reviewID)
	if err != nil {
		return err
	}

	d := c.app.Dialog
	if err := d.OpenEdit(r); err != nil {
		return err
	}
	defer d.Cancel()

	if err := form.apply(fs, d); err != nil {
		return err
	}
	return c.submit(ctx, d)
}

func (c *cli) submit(ctx context.Context, d *dialog.Controller) error {
	sub, err := d.Submit(ctx)
	if err != nil {
		return err
	}
	if sub.Review != nil {
		fmt.Fprintf(c.out, "%s %s %s\n", sub.Review.ID, domain.DisplaySize(sub.Review.Item.Size), view.Stars(sub.Review.Rate))
	}
	return nil
}

func (c *cli) reviewDelete(ctx context.Context, args []string) error {
	fs := c.flagSet("review delete")
	productID := fs.String("product", "", "product id")
	reviewID := fs.String("id", "", "review id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" || *reviewID == "" {
		return fmt.Errorf("%w: -product and -id are required", errUsage)
	}

	r, err := c.findReview(ctx, *productID, *reviewID)
	if err != nil {
		return err
	}
	if !r.OwnedBy(c.app.Session.UserID()) {
		return fmt.Errorf("review %s was written by %s", r.ID, r.Author.Name)
	}
	return c.app.Reviews.DeleteReview(ctx, r.ID, *productID)
}

func (c *cli) findReview(ctx context.Context, productID, reviewID string) (domain.Review, error) {
	reviews, err := c.app.Reviews.ListReviews(ctx, productID)
	if err != nil {
		return domain.Review{}, err
	}
	for _, r := range reviews {
		if r.ID == reviewID {
			return r, nil
		}
	}
	return domain.Review{}, fmt.Errorf("review %s not found on product %s", reviewID, productID)
}

func (c *cli) cart(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "add" {
		return fmt.Errorf("%w: cart expects add", errUsage)
	}
	fs := c.flagSet("cart add")
	productID := fs.String("product", "", "product id")
	size := fs.String("size", "", "size")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *productID == "" || *size == "" {
		return fmt.Errorf("%w: -product and -size are required", errUsage)
	}
	return c.app.Cart.AddToCart(ctx, *productID, *size)
}

func (c *cli) health(ctx context.Context) error {
	resp := c.app.Health.Check(ctx)

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tDURATION\tERROR")
	for _, name := range resp.Names() {
		res := resp.Checks[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, res.Status, res.Duration, res.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if resp.Status != health.StatusUp {
		return fmt.Errorf("storefront is %s", resp.Status)
	}
	return nil
}
