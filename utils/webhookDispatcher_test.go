package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/database"
	"lms/models"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTest()
	require.NoError(t, err)
	return db
}

func TestSignWebhookPayload(t *testing.T) {
	// RFC 4231 test case 2
	signature := SignWebhookPayload("Jefe", []byte("what do ya want for nothing?"))
	require.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", signature)

	// A different secret must produce a different signature
	require.NotEqual(t, signature, SignWebhookPayload("other-secret", []byte("what do ya want for nothing?")))
}

func TestEndpointSubscribed(t *testing.T) {
	all := models.WebhookEndpoint{Events: ""}
	require.True(t, endpointSubscribed(all, models.EventCourseCompleted))
	require.True(t, endpointSubscribed(all, models.EventPing))

	scoped := models.WebhookEndpoint{Events: "course.completed, teacher.assigned"}
	require.True(t, endpointSubscribed(scoped, models.EventCourseCompleted))
	require.True(t, endpointSubscribed(scoped, models.EventTeacherAssigned))
	require.False(t, endpointSubscribed(scoped, models.EventVideoReady))
}

func TestAttemptDeliveryMarksDelivered(t *testing.T) {
	db := newTestDB(t)

	var gotEvent, gotSignature string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-Teachwell-Event")
		gotSignature = r.Header.Get("X-Teachwell-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	endpoint := models.WebhookEndpoint{SchoolID: 1, URL: server.URL, Secret: "super-secret-signing-key", IsActive: true}
	require.NoError(t, db.Create(&endpoint).Error)

	delivery := models.WebhookDelivery{
		EndpointID:  endpoint.ID,
		SchoolID:    1,
		DeliveryUID: "uid-delivered",
		Event:       models.EventCourseCompleted,
		Payload:     datatypes.JSON(`{"event":"course.completed"}`),
		Status:      models.DeliveryPending,
	}
	require.NoError(t, db.Create(&delivery).Error)

	AttemptDelivery(db, delivery.ID)

	require.NoError(t, db.First(&delivery, delivery.ID).Error)
	require.Equal(t, models.DeliveryDelivered, delivery.Status)
	require.Equal(t, 1, delivery.Attempts)
	require.Equal(t, http.StatusOK, delivery.ResponseStatus)
	require.Nil(t, delivery.NextRetryAt)
	require.Empty(t, delivery.LastError)

	// The receiver saw the event header and a signature over the exact body
	require.Equal(t, models.EventCourseCompleted, gotEvent)
	require.Equal(t, SignWebhookPayload(endpoint.Secret, gotBody), gotSignature)
}

func TestAttemptDeliverySchedulesRetryOnServerError(t *testing.T) {
	db := newTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	endpoint := models.WebhookEndpoint{SchoolID: 1, URL: server.URL, Secret: "super-secret-signing-key", IsActive: true}
	require.NoError(t, db.Create(&endpoint).Error)

	delivery := models.WebhookDelivery{
		EndpointID:  endpoint.ID,
		SchoolID:    1,
		DeliveryUID: "uid-retry",
		Event:       models.EventTeacherAssigned,
		Payload:     datatypes.JSON(`{"event":"teacher.assigned"}`),
		Status:      models.DeliveryPending,
	}
	require.NoError(t, db.Create(&delivery).Error)

	AttemptDelivery(db, delivery.ID)

	require.NoError(t, db.First(&delivery, delivery.ID).Error)
	require.Equal(t, models.DeliveryPending, delivery.Status)
	require.Equal(t, 1, delivery.Attempts)
	require.NotNil(t, delivery.NextRetryAt)
	require.Contains(t, delivery.LastError, "500")
}

func TestAttemptDeliveryFailsAtAttemptCap(t *testing.T) {
	db := newTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	endpoint := models.WebhookEndpoint{SchoolID: 1, URL: server.URL, Secret: "super-secret-signing-key", IsActive: true}
	require.NoError(t, db.Create(&endpoint).Error)

	delivery := models.WebhookDelivery{
		EndpointID:  endpoint.ID,
		SchoolID:    1,
		DeliveryUID: "uid-capped",
		Event:       models.EventVideoReady,
		Payload:     datatypes.JSON(`{"event":"video.ready"}`),
		Status:      models.DeliveryPending,
		Attempts:    4, // one attempt left before the default cap of 5
	}
	require.NoError(t, db.Create(&delivery).Error)

	AttemptDelivery(db, delivery.ID)

	require.NoError(t, db.First(&delivery, delivery.ID).Error)
	require.Equal(t, models.DeliveryFailed, delivery.Status)
	require.Equal(t, 5, delivery.Attempts)
	require.Nil(t, delivery.NextRetryAt)
}

func TestAttemptDeliverySkipsDelivered(t *testing.T) {
	db := newTestDB(t)

	endpoint := models.WebhookEndpoint{SchoolID: 1, URL: "http://127.0.0.1:1", Secret: "super-secret-signing-key", IsActive: true}
	require.NoError(t, db.Create(&endpoint).Error)

	delivery := models.WebhookDelivery{
		EndpointID:  endpoint.ID,
		SchoolID:    1,
		DeliveryUID: "uid-done",
		Event:       models.EventPing,
		Payload:     datatypes.JSON(`{"event":"ping"}`),
		Status:      models.DeliveryDelivered,
		Attempts:    1,
	}
	require.NoError(t, db.Create(&delivery).Error)

	AttemptDelivery(db, delivery.ID)

	require.NoError(t, db.First(&delivery, delivery.ID).Error)
	require.Equal(t, 1, delivery.Attempts)
}
