package gconf

import (
	"reflect"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x"
)

// OwnedConfig must have an Owner field in protobuf. A configuration update
// message must be signed by an owner in order to be authorized to apply the
// change.
type OwnedConfig interface {
	Configuration
	GetOwner() bazaar.Address
}

type UpdateConfigurationHandler struct {
	pkg string
	// We require this type to load the data.
	config    OwnedConfig
	auth      x.Authenticator
	initAdmin func(bazaar.ReadOnlyKVStore) (bazaar.Address, error)
	// fixedOwner rejects patches that change the owner of an existing
	// configuration.
	fixedOwner bool
}

var _ bazaar.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns a message handler that process
// configuration patch message.
//
// To pass authentication step, each message must be signed by the current
// configuration owner.
//
// A special chicken-egg problem appears when the configuration does not exist
// (it was not created via genesis). Without a configuration there is no owner
// that could authorize creating one. An optional `initConfAdmin` argument
// provides a creation only admin address. It is used to authenticate the
// transaction only when no configuration exists. Once a configuration is
// created, authentication relies only on the configuration's owner.
func NewUpdateConfigurationHandler(
	pkg string,
	config OwnedConfig,
	auth x.Authenticator,
	initConfAdmin func(bazaar.ReadOnlyKVStore) (bazaar.Address, error),
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		config:    config,
		auth:      auth,
		initAdmin: initConfAdmin,
	}
}

// WithFixedOwner returns a handler that never transfers the ownership. The
// initialization admin may still set the first owner.
func (h UpdateConfigurationHandler) WithFixedOwner() UpdateConfigurationHandler {
	h.fixedOwner = true
	return h
}

func (h UpdateConfigurationHandler) Check(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, err := h.applyTx(ctx, store, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	conf, err := h.applyTx(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Log: "configuration updated",
		Events: []bazaar.Event{
			{Kind: EventConfigurationUpdated, To: conf.GetOwner()},
		},
	}, nil
}

// EventConfigurationUpdated is emitted after a successful configuration
// update. The event To field is the owner after the update.
const EventConfigurationUpdated bazaar.EventKind = "configuration-updated"

func (h UpdateConfigurationHandler) applyTx(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (OwnedConfig, error) {
	// Each call works on its own instance so that no state leaks between
	// transactions.
	config := reflect.New(reflect.TypeOf(h.config).Elem()).Interface().(OwnedConfig)

	if err := h.authorize(ctx, store, config); err != nil {
		return nil, err
	}
	// Empty when the configuration is being created.
	owner := config.GetOwner()

	payload, err := patchPayload(tx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get message payload")
	}
	if err := patch(config, payload); err != nil {
		return nil, errors.Wrap(err, "cannot patch config with message payload")
	}
	if h.fixedOwner && len(owner) != 0 && !owner.Equals(config.GetOwner()) {
		return nil, errors.Wrap(errors.ErrCannotBeModified, "configuration owner")
	}

	if err := Save(store, h.pkg, config); err != nil {
		return nil, errors.Wrap(err, "cannot save updated config")
	}
	return config, nil
}

// authorize loads the current configuration into config and checks that
// its owner signed the request. Before the first configuration exists only
// the initialization admin may create one.
func (h UpdateConfigurationHandler) authorize(ctx bazaar.Context, db bazaar.KVStore, config OwnedConfig) error {
	err := Load(db, h.pkg, config)
	switch {
	case err == nil:
		return x.RequireSigner(ctx, h.auth, config.GetOwner(), "configuration owner")
	case !errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "load current configuration")
	case h.initAdmin == nil:
		return errors.Wrap(errors.ErrUnauthorized, "configuration does not exist and cannot be initialized")
	}
	admin, err := h.initAdmin(db)
	if err != nil {
		return errors.Wrap(err, "get init admin")
	}
	return x.RequireSigner(ctx, h.auth, admin, "initialization admin")
}

// patch copies every non zero field of payload into config. Both must be
// pointers to the same struct type.
func patch(config OwnedConfig, payload OwnedConfig) error {
	if reflect.TypeOf(payload) != reflect.TypeOf(config) {
		return errors.Wrapf(errors.ErrInvalidMsg, "patch of type %T cannot update %T", payload, config)
	}
	dst := reflect.ValueOf(config).Elem()
	src := reflect.ValueOf(payload).Elem()
	for i := 0; i < dst.NumField(); i++ {
		field := src.Field(i)
		if !reflect.DeepEqual(field.Interface(), reflect.Zero(field.Type()).Interface()) {
			dst.Field(i).Set(field)
		}
	}
	return nil
}

// patchPayload expects the transaction to have a message with "Patch" field of
// the same type as the configuration. Content of this field is extracted and
// returned.
func patchPayload(tx bazaar.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	// validate message
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	// Try to do (*Configuration).Patch and get the interface behind.
	pval := reflect.ValueOf(msg)
	if pval.Kind() != reflect.Ptr || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid message container value: %T", msg)
	}
	val := pval.Elem()

	field := val.FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "%T has no \"Patch\" field", msg)
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrInvalidState, `"Patch" field is required`)
	}
	payload, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidInput, `"Patch" field is of a wrong type`)
	}
	return payload, nil
}
