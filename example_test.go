package surrealengine_test

import (
	"context"
	"fmt"
	"log"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	surrealengine "github.com/iristech-systems/surrealengine"
	"github.com/iristech-systems/surrealengine/ql"
)

type User struct {
	ID       *models.RecordID `json:"id,omitempty"`
	Username string           `json:"username"`
	Email    string           `json:"email" surreal:"assert:string::is::email($value);unique"`
	Age      int              `json:"age"`
	Active   bool             `json:"active" surreal:"default:true"`
}

func (User) TableName() string { return "user" }

// Connecting, migrating the schema, and basic CRUD.
func Example() {
	ctx := context.Background()

	cfg := surrealengine.NewConfig("ws://localhost:8000", "app", "app").
		WithAuth("root", "root")

	engine, err := surrealengine.Connect(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close(ctx)

	if err := engine.Migrate(ctx, User{}); err != nil {
		log.Fatal(err)
	}

	user := &User{Username: "alice", Email: "alice@example.com", Age: 30}
	if _, err := surrealengine.Create(ctx, engine, user); err != nil {
		log.Fatal(err)
	}
	fmt.Println("created", user.ID)

	user.Age = 31
	if _, err := surrealengine.Save(ctx, engine, user); err != nil {
		log.Fatal(err)
	}

	if err := surrealengine.Delete(ctx, engine, user); err != nil {
		log.Fatal(err)
	}
}

// Chained filtering, ordering and pagination.
func ExampleObjects() {
	ctx := context.Background()

	engine, err := surrealengine.Connect(ctx, surrealengine.ConfigFromEnv())
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close(ctx)

	adults := surrealengine.Objects[User](engine).
		Filter(ql.Gte("age", 18), ql.Eq("active", true)).
		OrderBy("-age", "username")

	page, err := adults.Paginate(ctx, 1, 25)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(page.Total, "matching users")

	count, err := adults.Filter(ql.EndsWith("email", "@example.com")).Count(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(count)
}

// Bulk updates require an explicit filter, or AllRows to touch everything.
func ExampleQuerySet_Update() {
	ctx := context.Background()

	engine, err := surrealengine.Connect(ctx, surrealengine.ConfigFromEnv())
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close(ctx)

	users := surrealengine.Objects[User](engine)

	n, err := users.Filter(ql.Lt("age", 13)).Update(ctx, map[string]any{"active": false})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("deactivated", n)
}

// Subscribing to changes with a live query.
func ExampleQuerySet_Live() {
	ctx := context.Background()

	engine, err := surrealengine.Connect(ctx, surrealengine.ConfigFromEnv())
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close(ctx)

	sub, err := surrealengine.Objects[User](engine).
		Filter(ql.Eq("active", true)).
		Live(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer sub.Kill(ctx)

	for ev := range sub.Events() {
		user, err := surrealengine.DecodeEvent[User](ev)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(ev.Action, user.Username)
	}
}

// Sharing a bounded set of connections across goroutines.
func ExampleNewPool() {
	ctx := context.Background()

	pool, err := surrealengine.NewPool(surrealengine.PoolConfig{
		Dial: func(ctx context.Context) (*surrealengine.Engine, error) {
			return surrealengine.Connect(ctx, surrealengine.ConfigFromEnv())
		},
		Size: 8,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close(ctx)

	err = pool.WithConnection(ctx, func(e *surrealengine.Engine) error {
		users, err := surrealengine.Objects[User](e).
			Filter(ql.StartsWith("username", "a")).
			Limit(10).
			All(ctx)
		if err != nil {
			return err
		}
		fmt.Println(len(users))
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}
