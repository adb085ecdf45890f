package container

import (
	"fmt"
	"sync"
	"testing"

	"github.com/slimloans/hanami/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookRepo struct{ name string }

func TestRegisterAndResolve(t *testing.T) {
	t.Run("it should resolve plain values", func(t *testing.T) {
		c := New("app")
		require.NoError(t, c.Register("settings", map[string]string{"a": "b"}))

		v, err := c.Resolve("settings")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "b"}, v)
	})

	t.Run("it should call factories on every resolution unless memoized", func(t *testing.T) {
		c := New("app")
		calls := 0

		factory := Factory(func(Target) (interface{}, error) {
			calls++
			return &bookRepo{name: fmt.Sprintf("repo-%d", calls)}, nil
		})

		require.NoError(t, c.Register("repos.books", factory))
		require.NoError(t, c.Register("repos.memo", factory, Memoize()))

		first := c.MustResolve("repos.books")
		second := c.MustResolve("repos.books")
		assert.NotSame(t, first, second)

		memo := c.MustResolve("repos.memo")
		assert.Same(t, memo, c.MustResolve("repos.memo"))
		assert.Equal(t, 3, calls)
	})

	t.Run("it should reject duplicate keys", func(t *testing.T) {
		c := New("app")
		require.NoError(t, c.Register("logger", 1))
		assert.ErrorIs(t, c.Register("logger", 2), ErrorDuplicateKey)

		require.NoError(t, c.AddLoader("repos.books", func(Target) (interface{}, error) { return &bookRepo{}, nil }))
		assert.ErrorIs(t, c.Register("repos.books", 3), ErrorDuplicateKey)
		assert.ErrorIs(t, c.AddLoader("logger", nil), ErrorDuplicateKey)
	})

	t.Run("it should report registrations without loading", func(t *testing.T) {
		c := New("app")
		loaded := false
		require.NoError(t, c.AddLoader("repos.books", func(Target) (interface{}, error) { loaded = true; return &bookRepo{}, nil }))
		require.NoError(t, c.Register("logger", 1))

		assert.True(t, c.Registered("repos.books"))
		assert.True(t, c.Registered("logger"))
		assert.False(t, c.Registered("db.gateway"))
		assert.False(t, loaded)
	})

	t.Run("it should register under namespaces", func(t *testing.T) {
		c := New("app")
		c.Namespace("repos", func(ns *Namespace) {
			require.NoError(t, ns.Register("books", &bookRepo{}))
			ns.Namespace("admin", func(ns *Namespace) {
				require.NoError(t, ns.Register("users", &bookRepo{}))
			})
		})

		assert.Equal(t, []string{"repos.admin.users", "repos.books"}, c.Keys())
	})

	t.Run("it should resolve typed components", func(t *testing.T) {
		c := New("app")
		c.MustRegister("repo", &bookRepo{name: "books"})

		repo, err := Resolve[*bookRepo](c, "repo")
		require.NoError(t, err)
		assert.Equal(t, "books", repo.name)

		_, err = Resolve[string](c, "repo")
		assert.ErrorIs(t, err, ErrorComponentType)
	})

	t.Run("it should report missing components", func(t *testing.T) {
		c := New("app")
		_, err := c.Resolve("nope")
		assert.ErrorIs(t, err, ErrorComponentNotFound)
		assert.False(t, c.Has("nope"))
	})
}

func TestLazyLoading(t *testing.T) {
	t.Run("it should run loaders on first lookup only", func(t *testing.T) {
		c := New("app")
		calls := 0

		require.NoError(t, c.AddLoader("repos.books", func(Target) (interface{}, error) {
			calls++
			return &bookRepo{name: "books"}, nil
		}))

		assert.Empty(t, c.Keys())
		assert.True(t, c.Has("repos.books"))
		c.MustResolve("repos.books")

		assert.Equal(t, 1, calls)
		assert.Equal(t, []string{"repos.books"}, c.Keys())
	})

	t.Run("it should let loaders resolve their dependencies", func(t *testing.T) {
		c := New("app")
		c.MustRegister("name", "books")

		require.NoError(t, c.AddLoader("repo", func(t Target) (interface{}, error) {
			name, err := Resolve[string](t, "name")
			return &bookRepo{name: name}, err
		}))

		repo := MustResolve[*bookRepo](c, "repo")
		assert.Equal(t, "books", repo.name)
	})

	t.Run("it should start the provider owning the namespace", func(t *testing.T) {
		c := New("app")

		require.NoError(t, c.RegisterProvider(NewProvider("db", func(t Target) error {
			return t.Register("db.gateway", "sqlite://memory")
		})))

		assert.Equal(t, ProviderRegistered, c.ProviderState("db"))

		v, err := c.Resolve("db.gateway")
		require.NoError(t, err)
		assert.Equal(t, "sqlite://memory", v)
		assert.Equal(t, ProviderStarted, c.ProviderState("db"))
	})

	t.Run("it should detect dependency cycles", func(t *testing.T) {
		c := New("app")

		c.MustRegister("a", Factory(func(t Target) (interface{}, error) { return t.Resolve("b") }))
		c.MustRegister("b", Factory(func(t Target) (interface{}, error) { return t.Resolve("a") }))

		_, err := c.Resolve("a")
		assert.ErrorIs(t, err, ErrorDependencyCycle)
		assert.Contains(t, err.Error(), "app:a -> app:b -> app:a")
	})

	t.Run("it should serialize concurrent lazy lookups", func(t *testing.T) {
		c := New("app")
		calls := 0

		require.NoError(t, c.AddLoader("slow", func(Target) (interface{}, error) {
			calls++
			return &bookRepo{}, nil
		}))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.MustResolve("slow")
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, calls)
	})
}

type recordingProvider struct {
	name string
	log  *[]string
	fail bool
}

func (p *recordingProvider) Name() string { return p.name }

func (p *recordingProvider) Prepare(Target) error {
	*p.log = append(*p.log, "prepare "+p.name)
	return nil
}

func (p *recordingProvider) Start(t Target) error {
	if p.fail {
		return fmt.Errorf("cannot connect")
	}
	*p.log = append(*p.log, "start "+p.name)
	return t.Register(p.name+".client", p.name)
}

func (p *recordingProvider) Stop(Target) error {
	*p.log = append(*p.log, "stop "+p.name)
	return nil
}

func TestProviders(t *testing.T) {
	t.Run("it should walk the lifecycle", func(t *testing.T) {
		var log []string
		c := New("app")
		require.NoError(t, c.RegisterProvider(&recordingProvider{name: "db", log: &log}))
		require.NoError(t, c.RegisterProvider(&recordingProvider{name: "redis", log: &log}))

		require.NoError(t, c.Prepare("db"))
		assert.Equal(t, ProviderPrepared, c.ProviderState("db"))

		require.NoError(t, c.Finalize())
		assert.Equal(t, ProviderStarted, c.ProviderState("db"))
		assert.Equal(t, ProviderStarted, c.ProviderState("redis"))

		require.NoError(t, c.Shutdown())
		assert.Equal(t, ProviderStopped, c.ProviderState("db"))

		assert.Equal(t, []string{
			"prepare db", "start db", "prepare redis", "start redis", "stop redis", "stop db",
		}, log)
	})

	t.Run("it should wrap provider failures", func(t *testing.T) {
		var log []string
		c := New("app")
		require.NoError(t, c.RegisterProvider(&recordingProvider{name: "db", log: &log, fail: true}))

		err := c.Start("db")
		assert.ErrorIs(t, err, ErrorProviderFailed)
		assert.Equal(t, ProviderPrepared, c.ProviderState("db"))
	})

	t.Run("it should report unknown providers", func(t *testing.T) {
		c := New("app")
		assert.ErrorIs(t, c.Start("nope"), ErrorProviderNotFound)
		assert.Equal(t, ProviderUnregistered, c.ProviderState("nope"))
	})
}

func TestImports(t *testing.T) {
	t.Run("it should import under a namespace", func(t *testing.T) {
		search := New("search")
		search.MustRegister("index", "books-index")

		main := New("main")
		require.NoError(t, main.Import("search", search))

		v, err := main.Resolve("search.index")
		require.NoError(t, err)
		assert.Equal(t, "books-index", v)
	})

	t.Run("it should respect exports", func(t *testing.T) {
		search := New("search")
		search.MustRegister("index", "books-index")
		search.MustRegister("secret", "hidden")
		require.NoError(t, search.Export("index"))

		main := New("main")
		require.NoError(t, main.Import("search", search))

		_, err := main.Resolve("search.secret")
		assert.ErrorIs(t, err, ErrorComponentNotFound)

		require.NoError(t, main.Finalize())
		assert.Equal(t, []string{"search.index"}, main.Keys())
	})

	t.Run("it should import selected keys without namespace", func(t *testing.T) {
		app := New("app")
		app.MustRegister("logger", "app-logger")
		app.MustRegister("inflector", "app-inflector")

		slice := New("main")
		require.NoError(t, slice.Import("", app, "logger"))
		slice.MustRegister("logger.local", "x")

		assert.Equal(t, "app-logger", slice.MustResolve("logger"))
		_, err := slice.Resolve("inflector")
		assert.ErrorIs(t, err, ErrorComponentNotFound)
	})

	t.Run("it should let local keys replace imports looked up earlier", func(t *testing.T) {
		app := New("app")
		app.MustRegister("logger", "app-logger")
		app.MustRegister("inflector", "app-inflector")

		slice := New("main")
		require.NoError(t, slice.Import("", app))

		assert.Equal(t, "app-logger", slice.MustResolve("logger"))
		assert.Equal(t, "app-inflector", slice.MustResolve("inflector"))

		require.NoError(t, slice.Register("logger", "main-logger"))
		require.NoError(t, slice.AddLoader("inflector", func(Target) (interface{}, error) {
			return "main-inflector", nil
		}))
		assert.ErrorIs(t, slice.Register("logger", "again"), ErrorDuplicateKey)

		assert.Equal(t, "main-logger", slice.MustResolve("logger"))
		assert.Equal(t, "main-inflector", slice.MustResolve("inflector"))

		require.NoError(t, slice.Finalize())
		assert.Equal(t, "main-logger", slice.MustResolve("logger"))
	})

	t.Run("it should reject import cycles", func(t *testing.T) {
		a, b, c := New("a"), New("b"), New("c")

		require.NoError(t, a.Import("b", b))
		require.NoError(t, b.Import("c", c))

		assert.ErrorIs(t, c.Import("a", a), ErrorImportCycle)
		assert.ErrorIs(t, a.Import("a", a), ErrorImportCycle)
	})

	t.Run("it should keep local keys over imported ones", func(t *testing.T) {
		app := New("app")
		app.MustRegister("logger", "app-logger")

		slice := New("main")
		slice.MustRegister("logger", "slice-logger")
		require.NoError(t, slice.Import("", app))
		require.NoError(t, slice.Finalize())

		assert.Equal(t, "slice-logger", slice.MustResolve("logger"))
	})
}

func TestFinalize(t *testing.T) {
	c := New("app")
	loads := 0

	require.NoError(t, c.AddLoader("repo", func(Target) (interface{}, error) {
		loads++
		return &bookRepo{}, nil
	}))

	require.NoError(t, c.Finalize())
	require.NoError(t, c.Finalize())

	t.Run("it should load everything exactly once", func(t *testing.T) {
		assert.Equal(t, 1, loads)
		assert.True(t, c.Finalized())
		assert.Equal(t, []string{"repo"}, c.Keys())
	})

	t.Run("it should freeze the registry", func(t *testing.T) {
		assert.ErrorIs(t, c.Register("late", 1), errors.ErrorFrozen)
		assert.ErrorIs(t, c.AddLoader("late", nil), errors.ErrorFrozen)
		assert.ErrorIs(t, c.Import("x", New("x")), errors.ErrorFrozen)
	})

	t.Run("it should not look anything up after finalize", func(t *testing.T) {
		_, err := c.Resolve("unknown")
		assert.ErrorIs(t, err, ErrorComponentNotFound)
	})
}

func TestStubs(t *testing.T) {
	c := New("app")
	c.MustRegister("mailer", "smtp")

	assert.ErrorIs(t, c.Stub("mailer", "fake"), ErrorStubsDisabled)

	c.EnableStubs()
	require.NoError(t, c.Stub("mailer", "fake"))
	assert.Equal(t, "fake", c.MustResolve("mailer"))

	c.Unstub("mailer")
	assert.Equal(t, "smtp", c.MustResolve("mailer"))
}

type showAction struct {
	Base

	Repo   *bookRepo `inject:"repos.books"`
	Mailer string    `inject:"mailer,optional"`
	Name   string
}

type Base struct {
	Logger string `inject:"logger"`
}

func TestInject(t *testing.T) {
	c := New("app")
	c.MustRegister("repos.books", &bookRepo{name: "books"})
	c.MustRegister("logger", "app-logger")

	t.Run("it should fill tagged fields", func(t *testing.T) {
		action := &showAction{}
		require.NoError(t, c.Inject(action))

		assert.Equal(t, "books", action.Repo.name)
		assert.Equal(t, "app-logger", action.Logger)
		assert.Empty(t, action.Mailer)
	})

	t.Run("it should keep explicit dependencies", func(t *testing.T) {
		explicit := &bookRepo{name: "explicit"}
		action := &showAction{Repo: explicit}
		require.NoError(t, c.Inject(action))

		assert.Same(t, explicit, action.Repo)
	})

	t.Run("it should reject non struct targets", func(t *testing.T) {
		assert.ErrorIs(t, c.Inject(showAction{}), ErrorInvalidInjection)
	})

	t.Run("it should reject mismatched types", func(t *testing.T) {
		target := &struct {
			Repo string `inject:"repos.books"`
		}{}
		assert.ErrorIs(t, c.Inject(target), ErrorInvalidInjection)
	})
}
