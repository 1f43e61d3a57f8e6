package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"storekeep/internal/api"
	"storekeep/internal/config"
	"storekeep/internal/imagehost"
	"storekeep/internal/logger"
	"storekeep/internal/login"
	"storekeep/internal/order"
	"storekeep/internal/permission"
	"storekeep/internal/product"
	"storekeep/internal/register"
	"storekeep/internal/session"
	"storekeep/internal/store"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
)

func main() {
	web := flag.Bool("web", false, "run with web platform semantics (skips the permission gate)")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	client := api.NewClient(cfg.APIBaseURL)
	uploader := imagehost.NewImgBBUploader(cfg.ImgBBAPIKey)

	sessions := session.NewStore(client, session.NewFileStorage(cfg.SessionFile))
	sessions.Restore()

	stdin := bufio.NewReader(os.Stdin)

	gate := permission.NewGate(&terminalAuthorizer{in: stdin}, *web || cfg.IsWeb())
	if !runGate(gate, stdin) {
		fmt.Println("Required permissions were not granted. Exiting.")
		return
	}

	workflow := order.NewWorkflow(client, terminalDialer{})
	catalog := product.NewService(client, uploader)
	editor := store.NewEditor(client)
	registration := register.NewService(client, uploader)

	for {
		if !sessions.Authenticated() {
			if !runLogin(login.NewFlow(sessions), registration, stdin) {
				return
			}
		}
		if !runMenu(sessions, workflow, catalog, editor, stdin) {
			return
		}
	}
}

func opCtx() context.Context {
	return logger.WithOpID(context.Background(), uuid.NewString())
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// runGate checks every capability and lets the user request the
// missing ones until the aggregate flips true or the user gives up.
func runGate(gate *permission.Gate, in *bufio.Reader) bool {
	if gate.CheckAll(opCtx()) {
		return true
	}

	for !gate.AllGranted() {
		fmt.Println("\nThe app needs camera, media library, and location access.")
		for _, c := range permission.All {
			if gate.Grants()[c] {
				continue
			}
			out := gate.Request(opCtx(), c)
			if out.Message != "" {
				fmt.Println(out.Message)
			}
			if out.NeedsSettings {
				return false
			}
		}
		if !gate.AllGranted() {
			if prompt(in, "Try again? [y/N] ") != "y" {
				return false
			}
		}
	}
	return true
}

// runLogin drives the two-step handshake until a session exists or the
// user quits. New owners can branch into registration and come back.
func runLogin(flow *login.Flow, registration *register.Service, in *bufio.Reader) bool {
	for {
		switch flow.Step() {
		case login.StepUsername:
			username := prompt(in, "Username (or 'register', 'quit'): ")
			if username == "quit" {
				return false
			}
			if username == "register" {
				runRegister(registration, in)
				continue
			}
			flow.SetUsername(username)
			if res := flow.SubmitUsername(opCtx()); !res.Success {
				fmt.Println(res.Error)
			}

		case login.StepPassword:
			fmt.Printf("Welcome %s (%s)\n", flow.OwnerName(), flow.StoreName())
			password := prompt(in, "Password (or 'back'): ")
			if password == "back" {
				flow.Back()
				continue
			}
			flow.SetPassword(password)
			res := flow.SubmitPassword(opCtx())
			if !res.Success {
				fmt.Println("Login failed:", res.Error)
				continue
			}
			fmt.Printf("Signed in as %s\n", res.Session.StoreName)
			return true
		}
	}
}

// runRegister collects the new store's details and submits them; the
// caller returns to the login prompt either way.
func runRegister(registration *register.Service, in *bufio.Reader) {
	input := register.Input{
		Name:        prompt(in, "Store name: "),
		Description: prompt(in, "Description: "),
		Owner:       prompt(in, "Owner name: "),
		Category:    prompt(in, "Category: "),
		Username:    prompt(in, "Username: "),
		Password:    prompt(in, "Password (min. 6 characters): "),
	}

	if path := prompt(in, "Store image file (optional): "); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Println("Could not read image:", err)
			return
		}
		input.ImageRef = path
		input.ImageData = data
	}

	res, err := registration.Register(opCtx(), input)
	if err != nil {
		var verr *register.ValidationError
		if errors.As(err, &verr) {
			for field, msg := range verr.Fields {
				fmt.Printf("  %s: %s\n", field, msg)
			}
			return
		}
		fmt.Println("Registration failed:", err)
		return
	}
	if res.ImageFallback {
		fmt.Println("Image hosting failed; the local image is used instead.")
	}
	fmt.Printf("Store %q registered. You can sign in now.\n", res.Store.Name)
}

func runMenu(
	sessions *session.Store,
	workflow *order.Workflow,
	catalog *product.Service,
	editor *store.Editor,
	in *bufio.Reader,
) bool {
	sess, ok := sessions.Session()
	if !ok {
		return true
	}

	for {
		fmt.Printf("\n[%s] 1) orders  2) update order  3) call customer  4) products  5) add product  6) delete product  7) edit profile  8) set location  9) logout  0) quit\n", sess.StoreName)
		switch prompt(in, "> ") {
		case "1":
			showOrders(workflow, sess.ID)
		case "2":
			updateOrder(workflow, sess.ID, in)
		case "3":
			callCustomer(workflow, in)
		case "4":
			showProducts(catalog, sess.ID)
		case "5":
			addProduct(catalog, sess.ID, in)
		case "6":
			if id := prompt(in, "Product id: "); id != "" {
				if err := catalog.Delete(opCtx(), id); err != nil {
					fmt.Println("Delete failed:", err)
				} else {
					fmt.Println("Deleted.")
				}
			}
		case "7":
			editProfile(sessions, editor, sess.ID, in)
		case "8":
			setLocation(sessions, editor, sess.ID, in)
		case "9":
			sessions.Logout()
			return true
		case "0":
			return false
		}
	}
}

func showOrders(workflow *order.Workflow, storeID string) {
	orders, err := workflow.Load(opCtx(), storeID)
	if err != nil {
		fmt.Println("Could not load orders:", err)
		return
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	for _, o := range orders {
		fmt.Printf("Order #%s  %s  %s  total %.2f\n", o.ID, o.Status, o.CreatedAt.Format("Jan 2, 2006"), o.Total)
		for _, item := range o.Items {
			fmt.Printf("  %s × %d\n", item.Name, item.Quantity)
		}
	}
}

func updateOrder(workflow *order.Workflow, storeID string, in *bufio.Reader) {
	id := prompt(in, "Order id: ")
	target := order.Status(prompt(in, "New status (confirmed/processing/delivered/cancelled): "))

	if _, err := workflow.UpdateStatus(opCtx(), storeID, id, target); err != nil {
		fmt.Println("Update failed:", err)
		return
	}
	fmt.Println("Status updated.")
}

func callCustomer(workflow *order.Workflow, in *bufio.Reader) {
	id := prompt(in, "Order id: ")

	res, err := workflow.CallCustomer(opCtx(), id)
	if err != nil {
		fmt.Println("Call failed:", err)
		return
	}
	if !res.Called {
		fmt.Println(res.Message)
	}
}

func showProducts(catalog *product.Service, storeID string) {
	products, err := catalog.List(opCtx(), storeID)
	if err != nil {
		fmt.Println("Could not load products:", err)
		return
	}
	for _, p := range products {
		fmt.Printf("%s  %s  %.2f\n", p.ID, p.Name, float64(p.Price))
	}
}

func addProduct(catalog *product.Service, storeID string, in *bufio.Reader) {
	input := product.Input{
		Name:        prompt(in, "Name: "),
		Price:       prompt(in, "Price: "),
		Description: prompt(in, "Description: "),
	}

	if path := prompt(in, "Image file (optional): "); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Println("Could not read image:", err)
			return
		}
		input.ImageRef = path
		input.ImageData = data
	}

	res, err := catalog.Create(opCtx(), storeID, input)
	if err != nil {
		fmt.Println("Save failed:", err)
		return
	}
	if res.ImageFallback {
		fmt.Println("Image hosting failed; the local image is used instead.")
	}
	fmt.Println("Product created:", res.Product.ID)
}

func editProfile(sessions *session.Store, editor *store.Editor, storeID string, in *bufio.Reader) {
	current, err := editor.Load(opCtx(), storeID)
	if err != nil {
		fmt.Println("Could not load profile:", err)
		return
	}

	edit := func(label, cur string) string {
		if v := prompt(in, fmt.Sprintf("%s [%s]: ", label, cur)); v != "" {
			return v
		}
		return cur
	}

	form := store.Form{
		Name:     edit("Store name", current.Name),
		Owner:    edit("Owner", current.Owner),
		Address:  edit("Address", current.Address),
		Phone:    edit("Phone", current.Phone),
		Email:    edit("Email", current.Email),
		Username: current.Username,
		Category: edit("Category", current.Category),
		IsActive: current.IsActive,

		Description: current.Description, // not edited from the console menu
	}

	updated, err := editor.Save(opCtx(), storeID, form)
	if err != nil {
		fmt.Println("Save failed:", err)
		return
	}
	sessions.Refresh(updated)
	fmt.Println("Profile saved.")
}

func setLocation(sessions *session.Store, editor *store.Editor, storeID string, in *bufio.Reader) {
	lat, err1 := strconv.ParseFloat(prompt(in, "Latitude: "), 64)
	lng, err2 := strconv.ParseFloat(prompt(in, "Longitude: "), 64)
	if err1 != nil || err2 != nil {
		fmt.Println("Coordinates must be numbers.")
		return
	}

	updated, err := editor.SaveLocation(opCtx(), storeID, lat, lng)
	if err != nil {
		fmt.Println("Save failed:", err)
		return
	}
	sessions.Refresh(updated)
	fmt.Println("Location saved.")
}
