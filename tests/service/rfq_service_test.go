package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

func TestRfqCreate(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)

	t.Run("with manual lines", func(t *testing.T) {
		rfq, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{
			RfqNumber:    "RFQ-001",
			SupplierName: "Ferguson",
			Items: []domain.CreateRfqItemRequest{
				{MaterialID: material.ID, Quantity: 120, Unit: "LF"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RfqStatusDraft, rfq.Status)
		assert.Nil(t, rfq.SentAt)
		require.Len(t, rfq.Items, 1)
		assert.Equal(t, 120.0, rfq.Items[0].Quantity)
	})

	t.Run("line unit defaults to the material unit", func(t *testing.T) {
		rfq, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{
			RfqNumber: "RFQ-002",
			Items: []domain.CreateRfqItemRequest{
				{MaterialID: material.ID, Quantity: 10},
			},
		})
		require.NoError(t, err)
		require.Len(t, rfq.Items, 1)
		assert.Equal(t, "LF", rfq.Items[0].Unit)
	})

	t.Run("duplicate number within project", func(t *testing.T) {
		_, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{
			RfqNumber: "RFQ-001",
		})
		require.ErrorIs(t, err, service.ErrDuplicateRfqNumber)
	})

	t.Run("same number on another project is fine", func(t *testing.T) {
		otherProject := testutil.CreateTestProject(t, e.db, e.company.ID, "Other Job")
		_, err := e.rfqs.Create(e.ctx, otherProject.ID, &domain.CreateRfqRequest{
			RfqNumber: "RFQ-001",
		})
		require.NoError(t, err)
	})

	t.Run("material from another company", func(t *testing.T) {
		other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
		foreign := testutil.CreateTestMaterial(t, e.db, other.ID, "CU-075", 2.99, 0.09)

		_, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{
			RfqNumber: "RFQ-003",
			Items: []domain.CreateRfqItemRequest{
				{MaterialID: foreign.ID, Quantity: 1, Unit: "LF"},
			},
		})
		require.ErrorIs(t, err, service.ErrInvalidMaterial)
	})
}

func TestRfqStatusLifecycle(t *testing.T) {
	e := newEnv(t)

	rfq, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{RfqNumber: "RFQ-001"})
	require.NoError(t, err)

	t.Run("draft cannot close", func(t *testing.T) {
		_, err := e.rfqs.SetStatus(e.ctx, rfq.ID, domain.RfqStatusClosed)
		require.ErrorIs(t, err, service.ErrInvalidStatusTransition)
	})

	t.Run("send stamps SentAt once", func(t *testing.T) {
		sent, err := e.rfqs.SetStatus(e.ctx, rfq.ID, domain.RfqStatusSent)
		require.NoError(t, err)
		require.NotNil(t, sent.SentAt)
		firstSentAt := *sent.SentAt

		// Reopen and send again; the original timestamp survives
		_, err = e.rfqs.SetStatus(e.ctx, rfq.ID, domain.RfqStatusDraft)
		require.NoError(t, err)
		resent, err := e.rfqs.SetStatus(e.ctx, rfq.ID, domain.RfqStatusSent)
		require.NoError(t, err)
		require.NotNil(t, resent.SentAt)
		assert.Equal(t, firstSentAt, *resent.SentAt)
	})

	t.Run("sent closes and reopens", func(t *testing.T) {
		closed, err := e.rfqs.SetStatus(e.ctx, rfq.ID, domain.RfqStatusClosed)
		require.NoError(t, err)
		assert.Equal(t, domain.RfqStatusClosed, closed.Status)

		reopened, err := e.rfqs.SetStatus(e.ctx, rfq.ID, domain.RfqStatusDraft)
		require.NoError(t, err)
		assert.Equal(t, domain.RfqStatusDraft, reopened.Status)
		assert.NotNil(t, reopened.SentAt)
	})

	t.Run("setting the current status is a no-op", func(t *testing.T) {
		same, err := e.rfqs.SetStatus(e.ctx, rfq.ID, domain.RfqStatusDraft)
		require.NoError(t, err)
		assert.Equal(t, domain.RfqStatusDraft, same.Status)
	})
}

func TestRfqAssembleFromRollup(t *testing.T) {
	e := newEnv(t)

	copper := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)
	pvc := testutil.CreateTestMaterial(t, e.db, e.company.ID, "PVC-4", 12.50, 0.08)

	base := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Base Bid", 0)
	water := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Water", 0)
	sanitary := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Sanitary", 1)

	add := func(m *domain.Material, c *domain.WbsCategory, qty float64) {
		req := &domain.CreateTakeoffItemRequest{MaterialID: m.ID, Quantity: qty}
		if c != nil {
			req.WbsCategoryID = &c.ID
		}
		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, req)
		require.NoError(t, err)
	}

	// Copper split across two categories, PVC in one
	add(copper, water, 15)
	add(copper, sanitary, 5)
	add(pvc, sanitary, 8)

	t.Run("merges quantities per material", func(t *testing.T) {
		rfq, err := e.rfqs.AssembleFromRollup(e.ctx, e.project.ID, &domain.AssembleRfqRequest{
			RfqNumber:    "RFQ-ALL",
			SupplierName: "Ferguson",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RfqStatusDraft, rfq.Status)
		require.Len(t, rfq.Items, 2)

		byPart := map[string]domain.RfqItemDTO{}
		for _, item := range rfq.Items {
			byPart[item.PartNumber] = item
		}
		assert.InDelta(t, 20, byPart["CU-075"].Quantity, 1e-9)
		assert.InDelta(t, 8, byPart["PVC-4"].Quantity, 1e-9)
		assert.Equal(t, "LF", byPart["CU-075"].Unit)
	})

	t.Run("category selection includes descendants", func(t *testing.T) {
		rfq, err := e.rfqs.AssembleFromRollup(e.ctx, e.project.ID, &domain.AssembleRfqRequest{
			RfqNumber:      "RFQ-BASE",
			WbsCategoryIDs: []uuid.UUID{base.ID},
		})
		require.NoError(t, err)
		// Every line sits under a descendant of Base Bid
		require.Len(t, rfq.Items, 2)
	})

	t.Run("narrow selection", func(t *testing.T) {
		rfq, err := e.rfqs.AssembleFromRollup(e.ctx, e.project.ID, &domain.AssembleRfqRequest{
			RfqNumber:      "RFQ-WATER",
			WbsCategoryIDs: []uuid.UUID{water.ID},
		})
		require.NoError(t, err)
		require.Len(t, rfq.Items, 1)
		assert.Equal(t, "CU-075", rfq.Items[0].PartNumber)
		assert.InDelta(t, 15, rfq.Items[0].Quantity, 1e-9)
	})

	t.Run("snapshot survives later ledger edits", func(t *testing.T) {
		before, err := e.rfqs.AssembleFromRollup(e.ctx, e.project.ID, &domain.AssembleRfqRequest{
			RfqNumber: "RFQ-SNAP",
		})
		require.NoError(t, err)

		add(copper, water, 100)

		after, err := e.rfqs.GetByID(e.ctx, before.ID)
		require.NoError(t, err)
		byPart := map[string]float64{}
		for _, item := range after.Items {
			byPart[item.PartNumber] = item.Quantity
		}
		assert.InDelta(t, 20, byPart["CU-075"], 1e-9)
	})

	t.Run("empty rollup", func(t *testing.T) {
		emptyProject := testutil.CreateTestProject(t, e.db, e.company.ID, "Empty Job")
		_, err := e.rfqs.AssembleFromRollup(e.ctx, emptyProject.ID, &domain.AssembleRfqRequest{
			RfqNumber: "RFQ-EMPTY",
		})
		require.ErrorIs(t, err, service.ErrEmptyRollup)
	})

	t.Run("selection matching nothing", func(t *testing.T) {
		unused := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Unused", 5)
		_, err := e.rfqs.AssembleFromRollup(e.ctx, e.project.ID, &domain.AssembleRfqRequest{
			RfqNumber:      "RFQ-NONE",
			WbsCategoryIDs: []uuid.UUID{unused.ID},
		})
		require.ErrorIs(t, err, service.ErrEmptyRollup)
	})
}

func TestRfqAddItemAndDelete(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)

	rfq, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{RfqNumber: "RFQ-001"})
	require.NoError(t, err)
	assert.Equal(t, 0, rfq.ItemCount)

	withLine, err := e.rfqs.AddItem(e.ctx, rfq.ID, &domain.CreateRfqItemRequest{
		MaterialID: material.ID,
		Quantity:   40,
		Unit:       "LF",
	})
	require.NoError(t, err)
	require.Len(t, withLine.Items, 1)
	assert.Equal(t, 1, withLine.ItemCount)

	require.NoError(t, e.rfqs.Delete(e.ctx, rfq.ID))
	_, err = e.rfqs.GetByID(e.ctx, rfq.ID)
	require.ErrorIs(t, err, service.ErrRfqNotFound)
}

func TestRfqListByProject(t *testing.T) {
	e := newEnv(t)

	for _, number := range []string{"RFQ-001", "RFQ-002"} {
		_, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{RfqNumber: number})
		require.NoError(t, err)
	}

	rfqs, err := e.rfqs.ListByProject(e.ctx, e.project.ID)
	require.NoError(t, err)
	assert.Len(t, rfqs, 2)
}

func TestRfqCompanyScoping(t *testing.T) {
	e := newEnv(t)

	rfq, err := e.rfqs.Create(e.ctx, e.project.ID, &domain.CreateRfqRequest{RfqNumber: "RFQ-001"})
	require.NoError(t, err)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err = e.rfqs.GetByID(otherCtx, rfq.ID)
	require.ErrorIs(t, err, service.ErrRfqNotFound)

	_, err = e.rfqs.ListByProject(otherCtx, e.project.ID)
	require.ErrorIs(t, err, service.ErrProjectNotFound)
}
